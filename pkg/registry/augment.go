package registry

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/eftimios/tierforge/pkg/logging"
	"github.com/eftimios/tierforge/pkg/tiers"
)

// Augmenter applies tier derivation to every model entry of a document.
// Entries are independent of each other; processing is sequential so the
// resulting document is deterministic.
type Augmenter struct {
	deriver *tiers.Deriver
}

// NewAugmenter creates an Augmenter around the given deriver.
func NewAugmenter(d *tiers.Deriver) *Augmenter {
	if d == nil {
		d = tiers.NewDeriver()
	}
	return &Augmenter{deriver: d}
}

// Result summarizes one document augmentation.
type Result struct {
	// Models is the number of model entries with a parseable tier table.
	Models int
	// Augmented is the number of models whose tier table changed.
	Augmented int
	// TiersAdded is the total number of derived tiers inserted.
	TiersAdded int
	// TiersReplaced is the number of pre-existing extreme tiers whose
	// re-derived values differed and were written over in place.
	TiersReplaced int
	// Passthrough is the number of entries carried through untouched
	// because their value is not a tier table.
	Passthrough int
}

// Changed reports whether the document was modified.
func (r Result) Changed() bool {
	return r.TiersAdded > 0 || r.TiersReplaced > 0
}

// Augment derives the xxs and xxl tiers for every model entry in the
// document, in place. Models already carrying both extremes, or lacking the
// relevant source tiers, are left as they are. A lone pre-existing extreme
// is re-derived from its source tier and overwritten in its current
// position when the values differ.
func (a *Augmenter) Augment(ctx context.Context, doc *Document) Result {
	log := logging.FromContext(ctx)

	var res Result
	for _, id := range doc.Models().IDs() {
		entry, _ := doc.Models().Get(id)
		table := entry.Tiers()
		if table == nil {
			res.Passthrough++
			continue
		}
		res.Models++

		augmented := a.deriver.Augment(table)
		if augmented == table {
			// Both extremes already present; nothing was derived.
			continue
		}

		added, replaced := 0, 0
		for _, name := range []string{tiers.TierXXS, tiers.TierXXL} {
			next, ok := augmented.Get(name)
			if !ok {
				continue
			}
			prev, had := table.Get(name)
			switch {
			case !had:
				added++
			case !sameConfig(prev, next):
				replaced++
			}
		}
		if added == 0 && replaced == 0 {
			continue
		}

		entry.SetTiers(augmented)
		res.Augmented++
		res.TiersAdded += added
		res.TiersReplaced += replaced
		log.Debug().
			Str("model", id).
			Int("tiers_added", added).
			Int("tiers_replaced", replaced).
			Msg("Derived extreme tiers")
	}

	return res
}

// sameConfig compares two tier configs by their JSON rendering. Field order
// is part of the comparison, matching what Save would persist.
func sameConfig(a, b *tiers.Config) bool {
	aj, aerr := json.Marshal(a)
	bj, berr := json.Marshal(b)
	return aerr == nil && berr == nil && bytes.Equal(aj, bj)
}
