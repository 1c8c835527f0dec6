package tiers

import (
	"bytes"
	"encoding/json"

	"github.com/eftimios/tierforge/pkg/errors"
)

// Tier names, smallest dataset bucket first.
const (
	TierXXS = "xxs"
	TierXS  = "xs"
	TierS   = "s"
	TierM   = "m"
	TierL   = "l"
	TierXL  = "xl"
	TierXXL = "xxl"
)

// Table is one model's ordered mapping from tier name to tier config.
// Iteration order is the persisted order; xxs belongs first and xxl last.
type Table struct {
	names   []string
	configs map[string]*Config
}

// NewTable creates an empty tier table.
func NewTable() *Table {
	return &Table{configs: make(map[string]*Config)}
}

// Len returns the number of tiers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Has reports whether the named tier exists.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.configs[name]
	return ok
}

// Get returns the named tier config.
func (t *Table) Get(name string) (*Config, bool) {
	if t == nil {
		return nil, false
	}
	cfg, ok := t.configs[name]
	return cfg, ok
}

// Set assigns a tier. An existing tier keeps its position; a new tier is
// appended.
func (t *Table) Set(name string, cfg *Config) {
	if t.configs == nil {
		t.configs = make(map[string]*Config)
	}
	if _, ok := t.configs[name]; !ok {
		t.names = append(t.names, name)
	}
	t.configs[name] = cfg
}

// Prepend assigns a tier at the front of the iteration order. An existing
// tier keeps its position and only has its value replaced.
func (t *Table) Prepend(name string, cfg *Config) {
	if t.configs == nil {
		t.configs = make(map[string]*Config)
	}
	if _, ok := t.configs[name]; !ok {
		t.names = append([]string{name}, t.names...)
	}
	t.configs[name] = cfg
}

// Append assigns a tier at the end of the iteration order. It is Set under
// a name that makes call sites read like the order invariant they enforce.
func (t *Table) Append(name string, cfg *Config) {
	t.Set(name, cfg)
}

// Names returns the tier names in iteration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Clone returns a deep copy of the table and every tier config in it.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := NewTable()
	for _, name := range t.names {
		out.Set(name, t.configs[name].Clone())
	}
	return out
}

// MarshalJSON renders the table as a JSON object in tier iteration order.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := t.configs[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object of tier configs, preserving tier order.
// Every member value must itself be an object.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.WrapParse("json", "", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.NewValidationError("", tok, "tier table must be a JSON object")
	}

	table := NewTable()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.WrapParse("json", "", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return errors.NewValidationError("", keyTok, "tier name must be a string")
		}
		val, err := decodeValue(dec)
		if err != nil {
			return err
		}
		cfg, ok := val.(*Config)
		if !ok {
			return errors.NewValidationError(name, val, "tier value must be an object")
		}
		table.Set(name, cfg)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return errors.WrapParse("json", "", err)
	}

	*t = *table
	return nil
}
