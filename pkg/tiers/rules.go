package tiers

// XXSRules control derivation of the xxs tier (1-5 training images) from xs.
// The xxs tier trains longer and more cautiously than xs: smaller batches,
// more gradient accumulation, lower learning rates, less noise.
type XXSRules struct {
	// DefaultEpochs is used when the source tier lacks max_train_epochs.
	DefaultEpochs int
	// EpochIncrease is added to the source epoch count.
	EpochIncrease int
	// BatchSize overrides train_batch_size.
	BatchSize int
	// GradAccumSteps overrides gradient_accumulation_steps.
	GradAccumSteps int
	// LRScale multiplies unet_lr and text_encoder_lr when present.
	LRScale float64
	// NoiseOffset overrides noise_offset.
	NoiseOffset float64
	// Scheduler overrides lr_scheduler.
	Scheduler string
	// LoaderWorkers overrides max_data_loader_n_workers.
	LoaderWorkers int
	// OptimizerArgsMarker triggers the optimizer_args rewrite when it occurs
	// in the naive string rendering of the source value.
	OptimizerArgsMarker string
	// OptimizerArgs is the wholesale replacement applied on a marker match.
	OptimizerArgs []string
}

// XXLRules control derivation of the xxl tier (100+ training images) from xl.
// The xxl tier is more aggressive than xl: fewer epochs, larger batches,
// higher (but capped) learning rates, more noise for diverse data.
type XXLRules struct {
	// DefaultEpochs is used when the source tier lacks max_train_epochs.
	DefaultEpochs int
	// EpochDecrease is subtracted from the source epoch count.
	EpochDecrease int
	// MinEpochs floors the resulting epoch count.
	MinEpochs int
	// DefaultBatchSize is used when the source tier lacks train_batch_size.
	DefaultBatchSize int
	// BatchIncrease is added to the source batch size.
	BatchIncrease int
	// MaxBatchSize caps the resulting batch size.
	MaxBatchSize int
	// GradAccumSteps overrides gradient_accumulation_steps.
	GradAccumSteps int
	// LRScale multiplies unet_lr and text_encoder_lr when present.
	LRScale float64
	// MaxUnetLR caps the scaled unet_lr.
	MaxUnetLR float64
	// MaxTextEncoderLR caps the scaled text_encoder_lr.
	MaxTextEncoderLR float64
	// NoiseOffset overrides noise_offset.
	NoiseOffset float64
	// Scheduler overrides lr_scheduler.
	Scheduler string
	// DefaultWarmupSteps is used when the source tier lacks lr_warmup_steps.
	DefaultWarmupSteps int
	// WarmupIncrease is added to the source warmup step count.
	WarmupIncrease int
	// LoaderWorkers overrides max_data_loader_n_workers.
	LoaderWorkers int
}

// Rules is the full named constant table for tier derivation. Keeping every
// default, override, and bound here keeps the transformation auditable and
// testable in isolation.
type Rules struct {
	XXS XXSRules
	XXL XXLRules
}

// DefaultRules returns the reference derivation rules.
func DefaultRules() Rules {
	return Rules{
		XXS: XXSRules{
			DefaultEpochs:       38,
			EpochIncrease:       7, // 45 epochs from the reference xs
			BatchSize:           2,
			GradAccumSteps:      4,
			LRScale:             0.8,
			NoiseOffset:         0.015,
			Scheduler:           "constant_with_warmup",
			LoaderWorkers:       2,
			OptimizerArgsMarker: "weight_decay",
			OptimizerArgs: []string{
				"betas=(0.9, 0.999)",
				"weight_decay=0.0002",
				"eps=1e-08",
			},
		},
		XXL: XXLRules{
			DefaultEpochs:      11,
			EpochDecrease:      3, // 8 epochs from the reference xl
			MinEpochs:          8,
			DefaultBatchSize:   12,
			BatchIncrease:      4,
			MaxBatchSize:       16,
			GradAccumSteps:     1,
			LRScale:            1.15,
			MaxUnetLR:          5e-05,
			MaxTextEncoderLR:   2.5e-06,
			NoiseOffset:        0.045,
			Scheduler:          "cosine",
			DefaultWarmupSteps: 120,
			WarmupIncrease:     30, // 150 steps from the reference xl
			LoaderWorkers:      8,
		},
	}
}
