package tiers

import (
	"fmt"
	"math"
	"strings"
)

// Deriver computes the xxs and xxl tiers from their source tiers using a
// fixed rule set. It is stateless apart from the rules and safe for
// concurrent use.
type Deriver struct {
	rules Rules
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithRules overrides the default derivation rules.
func WithRules(rules Rules) Option {
	return func(d *Deriver) {
		d.rules = rules
	}
}

// NewDeriver creates a Deriver with the default rules unless overridden.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{rules: DefaultRules()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Rules returns the deriver's rule set.
func (d *Deriver) Rules() Rules {
	return d.rules
}

// DeriveXXS builds the xxs tier from an xs config. The result is a deep
// copy layered with the xxs overrides and shares no state with the source.
// It reports false when the source is absent or empty, in which case no
// tier should be inserted.
func (d *Deriver) DeriveXXS(src *Config) (*Config, bool) {
	if src.Len() == 0 {
		return nil, false
	}
	r := d.rules.XXS

	cfg := src.Clone()
	cfg.Set(FieldMaxTrainEpochs, src.IntOr(FieldMaxTrainEpochs, r.DefaultEpochs)+r.EpochIncrease)
	cfg.Set(FieldTrainBatchSize, r.BatchSize)
	cfg.Set(FieldGradAccumSteps, r.GradAccumSteps)
	if lr, ok := src.Float(FieldUnetLR); ok {
		cfg.Set(FieldUnetLR, lr*r.LRScale)
	}
	if lr, ok := src.Float(FieldTextEncoderLR); ok {
		cfg.Set(FieldTextEncoderLR, lr*r.LRScale)
	}
	cfg.Set(FieldNoiseOffset, r.NoiseOffset)
	cfg.Set(FieldLRScheduler, r.Scheduler)
	cfg.Set(FieldLoaderWorkers, r.LoaderWorkers)

	// Stronger regularization for tiny datasets. The trigger is a substring
	// scan over the naive string rendering of the value, not a key-based
	// parse of the key=value pairs: persisted registries were produced under
	// this exact semantic and must keep deriving identically.
	if args, ok := src.Get(FieldOptimizerArgs); ok {
		if strings.Contains(fmt.Sprint(args), r.OptimizerArgsMarker) {
			cfg.Set(FieldOptimizerArgs, stringList(r.OptimizerArgs))
		}
	}

	return cfg, true
}

// DeriveXXL builds the xxl tier from an xl config. Numeric results are
// clamped: epochs have a floor, batch size and both learning rates have
// ceilings. Reports false when the source is absent or empty.
func (d *Deriver) DeriveXXL(src *Config) (*Config, bool) {
	if src.Len() == 0 {
		return nil, false
	}
	r := d.rules.XXL

	cfg := src.Clone()
	cfg.Set(FieldMaxTrainEpochs, max(r.MinEpochs, src.IntOr(FieldMaxTrainEpochs, r.DefaultEpochs)-r.EpochDecrease))
	cfg.Set(FieldTrainBatchSize, min(r.MaxBatchSize, src.IntOr(FieldTrainBatchSize, r.DefaultBatchSize)+r.BatchIncrease))
	cfg.Set(FieldGradAccumSteps, r.GradAccumSteps)
	if lr, ok := src.Float(FieldUnetLR); ok {
		cfg.Set(FieldUnetLR, math.Min(r.MaxUnetLR, lr*r.LRScale))
	}
	if lr, ok := src.Float(FieldTextEncoderLR); ok {
		cfg.Set(FieldTextEncoderLR, math.Min(r.MaxTextEncoderLR, lr*r.LRScale))
	}
	cfg.Set(FieldNoiseOffset, r.NoiseOffset)
	cfg.Set(FieldLRScheduler, r.Scheduler)
	cfg.Set(FieldLRWarmupSteps, src.IntOr(FieldLRWarmupSteps, r.DefaultWarmupSteps)+r.WarmupIncrease)
	cfg.Set(FieldLoaderWorkers, r.LoaderWorkers)

	return cfg, true
}

// Augment returns a table with the derived xxs and xxl tiers added. A table
// that already has both is returned unchanged. Otherwise the result is a new
// table: xxs (when derivable from xs) first, every existing tier in its
// original order, xxl (when derivable from xl) last. A lone pre-existing
// extreme is re-derived and overwritten in its current position. The input
// is never mutated.
func (d *Deriver) Augment(t *Table) *Table {
	if t == nil {
		return nil
	}
	if t.Has(TierXXS) && t.Has(TierXXL) {
		return t
	}

	out := t.Clone()
	xs, _ := t.Get(TierXS)
	if xxs, ok := d.DeriveXXS(xs); ok {
		out.Prepend(TierXXS, xxs)
	}
	xl, _ := t.Get(TierXL)
	if xxl, ok := d.DeriveXXL(xl); ok {
		out.Append(TierXXL, xxl)
	}
	return out
}

// stringList converts a string slice to the []any form used for decoded
// JSON values, so derived tiers round-trip like loaded ones.
func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
