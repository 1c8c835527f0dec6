package tiers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T, src string) *Config {
	t.Helper()
	c := NewConfig()
	require.NoError(t, json.Unmarshal([]byte(src), c))
	return c
}

func parseTable(t *testing.T, src string) *Table {
	t.Helper()
	tbl := NewTable()
	require.NoError(t, json.Unmarshal([]byte(src), tbl))
	return tbl
}

func marshal(t *testing.T, v json.Marshaler) string {
	t.Helper()
	data, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(data)
}

func TestDeriveXXS(t *testing.T) {
	d := NewDeriver()

	t.Run("reference scenario", func(t *testing.T) {
		xs := parseConfig(t, `{
			"max_train_epochs": 38,
			"unet_lr": 0.0001,
			"optimizer_args": ["weight_decay=0.01"]
		}`)

		xxs, ok := d.DeriveXXS(xs)
		require.True(t, ok)

		epochs, ok := xxs.Int(FieldMaxTrainEpochs)
		require.True(t, ok)
		assert.Equal(t, 45, epochs)

		lr, ok := xxs.Float(FieldUnetLR)
		require.True(t, ok)
		assert.Equal(t, 0.0001*0.8, lr)

		batch, _ := xxs.Int(FieldTrainBatchSize)
		assert.Equal(t, 2, batch)
		accum, _ := xxs.Int(FieldGradAccumSteps)
		assert.Equal(t, 4, accum)
		noise, _ := xxs.Float(FieldNoiseOffset)
		assert.Equal(t, 0.015, noise)
		sched, _ := xxs.String(FieldLRScheduler)
		assert.Equal(t, "constant_with_warmup", sched)
		workers, _ := xxs.Int(FieldLoaderWorkers)
		assert.Equal(t, 2, workers)

		args, ok := xxs.Get(FieldOptimizerArgs)
		require.True(t, ok)
		assert.Equal(t, []any{"betas=(0.9, 0.999)", "weight_decay=0.0002", "eps=1e-08"}, args)
	})

	t.Run("missing epochs uses default", func(t *testing.T) {
		xxs, ok := d.DeriveXXS(parseConfig(t, `{"unet_lr": 0.0001}`))
		require.True(t, ok)
		epochs, _ := xxs.Int(FieldMaxTrainEpochs)
		assert.Equal(t, 45, epochs) // 38 + 7
	})

	t.Run("text encoder lr scaled", func(t *testing.T) {
		xxs, ok := d.DeriveXXS(parseConfig(t, `{"text_encoder_lr": 5e-06}`))
		require.True(t, ok)
		lr, ok := xxs.Float(FieldTextEncoderLR)
		require.True(t, ok)
		assert.Equal(t, 5e-06*0.8, lr)
	})

	t.Run("learning rates absent stay absent", func(t *testing.T) {
		xxs, ok := d.DeriveXXS(parseConfig(t, `{"max_train_epochs": 10}`))
		require.True(t, ok)
		assert.False(t, xxs.Has(FieldUnetLR))
		assert.False(t, xxs.Has(FieldTextEncoderLR))
	})

	t.Run("optimizer args without marker untouched", func(t *testing.T) {
		xs := parseConfig(t, `{"optimizer_args": ["betas=(0.9, 0.999)", "eps=1e-08"]}`)
		xxs, ok := d.DeriveXXS(xs)
		require.True(t, ok)
		args, _ := xxs.Get(FieldOptimizerArgs)
		assert.Equal(t, []any{"betas=(0.9, 0.999)", "eps=1e-08"}, args)
	})

	t.Run("marker match is a substring scan", func(t *testing.T) {
		// The marker may occur anywhere in the rendered value, not just as
		// a key. This mirrors how existing registries were produced.
		xs := parseConfig(t, `{"optimizer_args": ["note=disable_weight_decay_later"]}`)
		xxs, ok := d.DeriveXXS(xs)
		require.True(t, ok)
		args, _ := xxs.Get(FieldOptimizerArgs)
		assert.Equal(t, []any{"betas=(0.9, 0.999)", "weight_decay=0.0002", "eps=1e-08"}, args)
	})

	t.Run("empty source produces no tier", func(t *testing.T) {
		_, ok := d.DeriveXXS(parseConfig(t, `{}`))
		assert.False(t, ok)
		_, ok = d.DeriveXXS(nil)
		assert.False(t, ok)
	})

	t.Run("source is not mutated", func(t *testing.T) {
		xs := parseConfig(t, `{"max_train_epochs": 38, "optimizer_args": ["weight_decay=0.01"]}`)
		before := marshal(t, xs)
		_, ok := d.DeriveXXS(xs)
		require.True(t, ok)
		assert.Equal(t, before, marshal(t, xs))
	})

	t.Run("unrelated fields copied unchanged", func(t *testing.T) {
		xs := parseConfig(t, `{"network_dim": 32, "resolution": "512,512"}`)
		xxs, ok := d.DeriveXXS(xs)
		require.True(t, ok)
		dim, _ := xxs.Int("network_dim")
		assert.Equal(t, 32, dim)
		res, _ := xxs.String("resolution")
		assert.Equal(t, "512,512", res)
	})
}

func TestDeriveXXL(t *testing.T) {
	d := NewDeriver()

	t.Run("overrides and bumps", func(t *testing.T) {
		xl := parseConfig(t, `{
			"max_train_epochs": 11,
			"train_batch_size": 12,
			"lr_warmup_steps": 120,
			"noise_offset": 0.03,
			"lr_scheduler": "linear"
		}`)

		xxl, ok := d.DeriveXXL(xl)
		require.True(t, ok)

		epochs, _ := xxl.Int(FieldMaxTrainEpochs)
		assert.Equal(t, 8, epochs)
		batch, _ := xxl.Int(FieldTrainBatchSize)
		assert.Equal(t, 16, batch)
		accum, _ := xxl.Int(FieldGradAccumSteps)
		assert.Equal(t, 1, accum)
		noise, _ := xxl.Float(FieldNoiseOffset)
		assert.Equal(t, 0.045, noise)
		sched, _ := xxl.String(FieldLRScheduler)
		assert.Equal(t, "cosine", sched)
		warmup, _ := xxl.Int(FieldLRWarmupSteps)
		assert.Equal(t, 150, warmup)
		workers, _ := xxl.Int(FieldLoaderWorkers)
		assert.Equal(t, 8, workers)
	})

	t.Run("epoch floor", func(t *testing.T) {
		xxl, _ := d.DeriveXXL(parseConfig(t, `{"max_train_epochs": 9}`))
		epochs, _ := xxl.Int(FieldMaxTrainEpochs)
		assert.Equal(t, 8, epochs) // floored, not 6

		xxl, _ = d.DeriveXXL(parseConfig(t, `{"max_train_epochs": 20}`))
		epochs, _ = xxl.Int(FieldMaxTrainEpochs)
		assert.Equal(t, 17, epochs)
	})

	t.Run("batch ceiling", func(t *testing.T) {
		xxl, _ := d.DeriveXXL(parseConfig(t, `{"train_batch_size": 14}`))
		batch, _ := xxl.Int(FieldTrainBatchSize)
		assert.Equal(t, 16, batch) // clamped, not 18

		xxl, _ = d.DeriveXXL(parseConfig(t, `{"train_batch_size": 10}`))
		batch, _ = xxl.Int(FieldTrainBatchSize)
		assert.Equal(t, 14, batch)
	})

	t.Run("unet lr ceiling", func(t *testing.T) {
		xxl, _ := d.DeriveXXL(parseConfig(t, `{"unet_lr": 1e-4}`))
		lr, ok := xxl.Float(FieldUnetLR)
		require.True(t, ok)
		assert.Equal(t, 5e-05, lr) // clamped, not 1.15e-4

		xxl, _ = d.DeriveXXL(parseConfig(t, `{"unet_lr": 1e-6}`))
		lr, _ = xxl.Float(FieldUnetLR)
		assert.Equal(t, 1e-6*1.15, lr) // below ceiling, unclamped
	})

	t.Run("text encoder lr ceiling", func(t *testing.T) {
		xxl, _ := d.DeriveXXL(parseConfig(t, `{"text_encoder_lr": 3e-6}`))
		lr, _ := xxl.Float(FieldTextEncoderLR)
		assert.Equal(t, 2.5e-06, lr)

		xxl, _ = d.DeriveXXL(parseConfig(t, `{"text_encoder_lr": 1e-6}`))
		lr, _ = xxl.Float(FieldTextEncoderLR)
		assert.Equal(t, 1e-6*1.15, lr)
	})

	t.Run("defaults for absent numeric fields", func(t *testing.T) {
		xxl, ok := d.DeriveXXL(parseConfig(t, `{"network_dim": 64}`))
		require.True(t, ok)
		epochs, _ := xxl.Int(FieldMaxTrainEpochs)
		assert.Equal(t, 8, epochs) // max(8, 11-3)
		batch, _ := xxl.Int(FieldTrainBatchSize)
		assert.Equal(t, 16, batch) // min(16, 12+4)
		warmup, _ := xxl.Int(FieldLRWarmupSteps)
		assert.Equal(t, 150, warmup) // 120 + 30
	})

	t.Run("empty source produces no tier", func(t *testing.T) {
		_, ok := d.DeriveXXL(parseConfig(t, `{}`))
		assert.False(t, ok)
	})
}

func TestAugment(t *testing.T) {
	d := NewDeriver()

	t.Run("order", func(t *testing.T) {
		tbl := parseTable(t, `{
			"xs": {"max_train_epochs": 38},
			"s":  {"max_train_epochs": 30},
			"m":  {"max_train_epochs": 20},
			"xl": {"max_train_epochs": 11}
		}`)

		out := d.Augment(tbl)
		assert.Equal(t, []string{"xxs", "xs", "s", "m", "xl", "xxl"}, out.Names())
	})

	t.Run("input is not mutated", func(t *testing.T) {
		tbl := parseTable(t, `{"xs": {"max_train_epochs": 38}, "xl": {"max_train_epochs": 11}}`)
		before := marshal(t, tbl)
		_ = d.Augment(tbl)
		assert.Equal(t, before, marshal(t, tbl))
	})

	t.Run("existing tiers carried unchanged", func(t *testing.T) {
		tbl := parseTable(t, `{"xs": {"max_train_epochs": 38, "unet_lr": 0.0001}, "xl": {"unet_lr": 4e-05}}`)
		out := d.Augment(tbl)

		xs, ok := out.Get(TierXS)
		require.True(t, ok)
		assert.JSONEq(t, `{"max_train_epochs": 38, "unet_lr": 0.0001}`, marshal(t, xs))
		xl, ok := out.Get(TierXL)
		require.True(t, ok)
		assert.JSONEq(t, `{"unet_lr": 4e-05}`, marshal(t, xl))
	})

	t.Run("idempotence", func(t *testing.T) {
		tbl := parseTable(t, `{"xs": {"max_train_epochs": 38}, "xl": {"max_train_epochs": 11}}`)
		once := d.Augment(tbl)
		twice := d.Augment(once)
		assert.Equal(t, marshal(t, once), marshal(t, twice))
	})

	t.Run("complete table is identity", func(t *testing.T) {
		tbl := parseTable(t, `{"xxs": {"a": 1}, "xs": {"b": 2}, "xl": {"c": 3}, "xxl": {"d": 4}}`)
		out := d.Augment(tbl)
		assert.Same(t, tbl, out)
	})

	t.Run("lone extreme is re-derived in place", func(t *testing.T) {
		tbl := parseTable(t, `{"xxs": {"max_train_epochs": 99}, "xs": {"max_train_epochs": 38}}`)
		out := d.Augment(tbl)

		assert.Equal(t, []string{"xxs", "xs"}, out.Names())
		xxs, ok := out.Get(TierXXS)
		require.True(t, ok)
		epochs, _ := xxs.Int(FieldMaxTrainEpochs)
		assert.Equal(t, 45, epochs)
	})

	t.Run("skip on absent xs", func(t *testing.T) {
		out := d.Augment(parseTable(t, `{"xl": {"max_train_epochs": 11}}`))
		assert.False(t, out.Has(TierXXS))
		assert.Equal(t, []string{"xl", "xxl"}, out.Names())
	})

	t.Run("skip on absent xl", func(t *testing.T) {
		out := d.Augment(parseTable(t, `{"xs": {"max_train_epochs": 38}}`))
		assert.False(t, out.Has(TierXXL))
		assert.Equal(t, []string{"xxs", "xs"}, out.Names())
	})

	t.Run("empty xl produces no xxl", func(t *testing.T) {
		out := d.Augment(parseTable(t, `{"xs": {"max_train_epochs": 38}, "xl": {}}`))
		assert.False(t, out.Has(TierXXL))
		assert.Equal(t, []string{"xxs", "xs", "xl"}, out.Names())
	})

	t.Run("nil table", func(t *testing.T) {
		assert.Nil(t, d.Augment(nil))
	})
}

func TestCustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.XXS.EpochIncrease = 1
	rules.XXL.MinEpochs = 10

	d := NewDeriver(WithRules(rules))

	xxs, ok := d.DeriveXXS(parseConfig(t, `{"max_train_epochs": 38}`))
	require.True(t, ok)
	epochs, _ := xxs.Int(FieldMaxTrainEpochs)
	assert.Equal(t, 39, epochs)

	xxl, ok := d.DeriveXXL(parseConfig(t, `{"max_train_epochs": 11}`))
	require.True(t, ok)
	epochs, _ = xxl.Int(FieldMaxTrainEpochs)
	assert.Equal(t, 10, epochs)
}
