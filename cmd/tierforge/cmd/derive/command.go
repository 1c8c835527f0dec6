// Package derive implements the tierforge derive command: it augments every
// model entry of the configured registries with the derived xxs and xxl
// tiers and writes the registries back.
package derive

import (
	"github.com/spf13/cobra"

	"github.com/eftimios/tierforge/cmd/application"
)

// Flags holds the derive command flags.
type Flags struct {
	// Dir overrides the configured registry directory.
	Dir string
	// Registries overrides the configured registry file names.
	Registries []string
	// KeepGoing attempts the remaining registries after a failure instead
	// of aborting on the first one.
	KeepGoing bool
	// DryRun computes and reports without writing anything back.
	DryRun bool
}

// NewCommand creates the derive command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Add derived xxs and xxl tiers to the preset registries",
		Args:  cobra.NoArgs,
		Long: `Derive reads each configured registry, computes the xxs tier from xs
(1-5 images: more epochs, smaller batches, lower learning rates) and the
xxl tier from xl (100+ images: fewer epochs, larger batches, higher but
capped learning rates), and writes the registries back pretty-printed.

Models already carrying both derived tiers are left untouched, as are
models lacking the source tier for a derivation. Existing tiers and any
other document content are never modified.`,
		Example: `  tierforge derive                          # Update both well-known registries
  tierforge derive --dir presets/lrs        # Registries in another directory
  tierforge derive --registry person_config.json
  tierforge derive --dry-run                # Preview without writing
  tierforge derive --keep-going             # Don't stop at the first failure`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.Dir, "dir", "", "registry directory (default \"lrs\")")
	cmd.Flags().StringSliceVar(&flags.Registries, "registry", nil, "registry file to process (repeatable; default: the two well-known registries)")
	cmd.Flags().BoolVar(&flags.KeepGoing, "keep-going", false, "attempt remaining registries after a failure")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report changes without writing")

	return cmd
}
