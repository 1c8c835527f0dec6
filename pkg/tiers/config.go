// Package tiers implements dataset-size tiers for per-model training
// hyperparameter presets and the derivation of the extreme tiers (xxs, xxl)
// from their existing neighbors (xs, xl).
//
// A preset table is keyed by tier name from a small closed vocabulary,
// ordered from the smallest dataset bucket to the largest:
//
//	xxs, xs, s, m, l, xl, xxl
//
// Only xs and xl are guaranteed to be present in persisted tables; the
// Deriver synthesizes xxs and xxl from them.
package tiers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/eftimios/tierforge/pkg/errors"
)

// Parameter names referenced by the derivation rules.
const (
	FieldMaxTrainEpochs = "max_train_epochs"
	FieldTrainBatchSize = "train_batch_size"
	FieldGradAccumSteps = "gradient_accumulation_steps"
	FieldUnetLR         = "unet_lr"
	FieldTextEncoderLR  = "text_encoder_lr"
	FieldNoiseOffset    = "noise_offset"
	FieldLRScheduler    = "lr_scheduler"
	FieldLRWarmupSteps  = "lr_warmup_steps"
	FieldLoaderWorkers  = "max_data_loader_n_workers"
	FieldOptimizerArgs  = "optimizer_args"
)

// Config is a single tier's parameter set. Field insertion order is
// preserved through JSON round-trips so that persisted registries stay
// stable under repeated processing. Values are strings, booleans, numbers
// (json.Number on decode, so integers keep their integer rendering),
// lists, or nested Config objects.
type Config struct {
	keys   []string
	values map[string]any
}

// NewConfig creates an empty tier config.
func NewConfig() *Config {
	return &Config{values: make(map[string]any)}
}

// Len returns the number of fields.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Has reports whether the field exists.
func (c *Config) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.values[key]
	return ok
}

// Get returns the raw value of a field.
func (c *Config) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Set assigns a field value. An existing field keeps its position; a new
// field is appended, matching insertion-order map semantics.
func (c *Config) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Keys returns the field names in insertion order.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Int returns the value of key coerced to an integer. Non-numeric values
// report false; float-typed values are truncated.
func (c *Config) Int(key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}

// IntOr returns the integer value of key, or def when the field is absent
// or not numeric.
func (c *Config) IntOr(key string, def int) int {
	if v, ok := c.Int(key); ok {
		return v
	}
	return def
}

// Float returns the value of key coerced to a float64.
func (c *Config) Float(key string) (float64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

// String returns the value of key when it is a string.
func (c *Config) String(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Clone returns a deep copy. The copy shares no mutable state with the
// original.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := NewConfig()
	for _, k := range c.keys {
		out.Set(k, cloneValue(c.values[k]))
	}
	return out
}

// cloneValue deep-copies a decoded JSON value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case *Config:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		// Scalars (string, bool, json.Number, float64, nil) are immutable.
		return v
	}
}

// MarshalJSON renders the config as a JSON object in field insertion order.
func (c *Config) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := encodeValue(c.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeValue renders a decoded JSON value back to JSON.
func encodeValue(v any) ([]byte, error) {
	switch t := v.(type) {
	case *Config:
		return t.MarshalJSON()
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := encodeValue(e)
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v)
	}
}

// UnmarshalJSON parses a JSON object, preserving field order and decoding
// numbers as json.Number.
func (c *Config) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.WrapParse("json", "", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.NewValidationError("", tok, "tier config must be a JSON object")
	}

	cfg, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*c = *cfg
	return nil
}

// decodeObject reads object members up to and including the closing brace.
// The opening brace must already be consumed.
func decodeObject(dec *json.Decoder) (*Config, error) {
	cfg := NewConfig()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.NewValidationError("", keyTok, "object key must be a string")
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		cfg.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, errors.WrapParse("json", "", err)
	}
	return cfg, nil
}

// decodeValue reads a single JSON value from the decoder.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool, or nil
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		list := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil { // closing bracket
			return nil, errors.WrapParse("json", "", err)
		}
		return list, nil
	default:
		return nil, errors.NewValidationError("", tok, fmt.Sprintf("unexpected delimiter %v", delim))
	}
}
