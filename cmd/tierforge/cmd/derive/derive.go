package derive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/eftimios/tierforge/cmd/application"
	"github.com/eftimios/tierforge/pkg/logging"
	"github.com/eftimios/tierforge/pkg/registry"
)

// Run executes the derive command against every configured registry.
// Registries are processed sequentially; without KeepGoing the first
// failure aborts before any further registry is touched.
func Run(ctx context.Context, app application.Application, flags *Flags, out io.Writer) error {
	log := logging.FromContext(ctx)

	store := app.Store(flags.Dir)
	names := flags.Registries
	if len(names) == 0 {
		names = app.Registries()
	}

	augmenter := registry.NewAugmenter(app.Deriver())

	var failures []error
	totalModels, totalTiers := 0, 0
	for _, name := range names {
		fmt.Fprintf(out, "Updating %s...\n", name)

		res, err := processRegistry(ctx, store, augmenter, name, flags.DryRun)
		if err != nil {
			if !flags.KeepGoing {
				return err
			}
			log.Error().Err(err).Str("registry", name).Msg("Registry failed, continuing")
			failures = append(failures, err)
			continue
		}

		if flags.DryRun {
			fmt.Fprintf(out, "[DRY] Would update %s: %d models, %d tiers to derive\n", name, res.Models, res.TiersAdded+res.TiersReplaced)
		} else {
			fmt.Fprintf(out, "[OK] Updated %s with xxs and xxl tiers\n", name)
		}
		log.Info().
			Str("registry", name).
			Int("models", res.Models).
			Int("augmented", res.Augmented).
			Int("tiers_added", res.TiersAdded).
			Int("tiers_replaced", res.TiersReplaced).
			Int("passthrough", res.Passthrough).
			Bool("dry_run", flags.DryRun).
			Msg("Registry processed")

		totalModels += res.Models
		totalTiers += res.TiersAdded + res.TiersReplaced
	}

	if len(failures) > 0 {
		return errors.Join(failures...)
	}

	fmt.Fprintln(out)
	if flags.DryRun {
		fmt.Fprintln(out, "[DRY] Dry run complete, no registry files were written")
	} else {
		fmt.Fprintln(out, "[SUCCESS] Successfully added xxs and xxl tiers to all model configurations!")
		fmt.Fprintln(out, "   xxs tier: 1-5 images (45 epochs, conservative)")
		fmt.Fprintln(out, "   xxl tier: 100+ images (8 epochs, aggressive)")
	}

	log.Info().Int("models", totalModels).Int("tiers_derived", totalTiers).Msg("Derivation complete")
	return nil
}

// processRegistry loads, augments, and (unless dry) saves one registry.
// Load or parse failures surface before anything is written.
func processRegistry(ctx context.Context, store registry.Store, augmenter *registry.Augmenter, name string, dry bool) (registry.Result, error) {
	doc, err := store.Load(ctx, name)
	if err != nil {
		return registry.Result{}, err
	}

	res := augmenter.Augment(ctx, doc)

	if dry {
		return res, nil
	}
	if err := store.Save(ctx, name, doc); err != nil {
		return res, err
	}
	return res, nil
}
