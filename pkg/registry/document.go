// Package registry persists model preset registries: JSON (or YAML)
// documents whose top-level "data" key maps opaque model hashes to tier
// tables. Documents round-trip losslessly: unknown top-level keys, model
// order, and tier order are all preserved, so augmenting a registry only
// ever adds data.<model>.<tier> entries.
package registry

import (
	"bytes"
	"encoding/json"

	"github.com/eftimios/tierforge/pkg/constants"
	"github.com/eftimios/tierforge/pkg/errors"
	"github.com/eftimios/tierforge/pkg/tiers"
)

// Document is one persisted registry file.
type Document struct {
	keys   []string                   // top-level key order, including "data"
	fields map[string]json.RawMessage // top-level fields other than "data"
	models *Models
}

// NewDocument creates an empty document with a data section.
func NewDocument() *Document {
	return &Document{
		keys:   []string{constants.DataKey},
		fields: make(map[string]json.RawMessage),
		models: newModels(),
	}
}

// Models returns the document's model set.
func (d *Document) Models() *Models {
	return d.models
}

// SetModel adds or replaces a model's tier table.
func (d *Document) SetModel(id string, table *tiers.Table) {
	d.models.set(id, &Entry{table: table})
}

// UnmarshalJSON parses a registry document. The top-level value must be an
// object containing a "data" object; anything else is a malformed registry.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.WrapParse("json", "", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.NewValidationError("", tok, "registry document must be a JSON object")
	}

	doc := Document{fields: make(map[string]json.RawMessage)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.WrapParse("json", "", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.NewValidationError("", keyTok, "top-level key must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.WrapParse("json", "", err)
		}
		doc.keys = append(doc.keys, key)
		if key == constants.DataKey {
			models, err := parseModels(raw)
			if err != nil {
				return err
			}
			doc.models = models
		} else {
			doc.fields[key] = raw
		}
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return errors.WrapParse("json", "", err)
	}

	if doc.models == nil {
		return errors.NewValidationError(constants.DataKey, nil, "registry document missing required top-level key")
	}

	*d = doc
	return nil
}

// MarshalJSON renders the document with its original top-level key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if key == constants.DataKey {
			mb, err := d.models.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(mb)
		} else {
			buf.Write(d.fields[key])
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Models is the ordered model-hash to entry mapping under "data".
type Models struct {
	ids     []string
	entries map[string]*Entry
}

func newModels() *Models {
	return &Models{entries: make(map[string]*Entry)}
}

// Len returns the number of model entries.
func (m *Models) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}

// IDs returns the model hashes in document order.
func (m *Models) IDs() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// Get returns the entry for a model hash.
func (m *Models) Get(id string) (*Entry, bool) {
	if m == nil {
		return nil, false
	}
	e, ok := m.entries[id]
	return e, ok
}

func (m *Models) set(id string, e *Entry) {
	if m.entries == nil {
		m.entries = make(map[string]*Entry)
	}
	if _, ok := m.entries[id]; !ok {
		m.ids = append(m.ids, id)
	}
	m.entries[id] = e
}

// MarshalJSON renders the model set in document order.
func (m *Models) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		eb, err := m.entries[id].marshal()
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// parseModels parses the "data" object into an ordered model set.
func parseModels(data []byte) (*Models, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.NewValidationError(constants.DataKey, tok, "data must be a JSON object")
	}

	models := newModels()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, errors.NewValidationError(constants.DataKey, keyTok, "model hash must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		models.set(id, parseEntry(raw))
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, errors.WrapParse("json", "", err)
	}

	return models, nil
}

// Entry is one model's value under "data". Values that parse as a tier
// table are held structured; anything else is carried through verbatim
// and never touched by augmentation.
type Entry struct {
	table *tiers.Table
	raw   json.RawMessage
}

// parseEntry keeps the raw bytes whenever the value is not an object of
// tier objects.
func parseEntry(raw json.RawMessage) *Entry {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		table := tiers.NewTable()
		if err := json.Unmarshal(raw, table); err == nil {
			return &Entry{table: table}
		}
	}
	return &Entry{raw: raw}
}

// Tiers returns the model's tier table, or nil for passthrough entries.
func (e *Entry) Tiers() *tiers.Table {
	if e == nil {
		return nil
	}
	return e.table
}

// SetTiers replaces the model's tier table.
func (e *Entry) SetTiers(t *tiers.Table) {
	e.table = t
	e.raw = nil
}

func (e *Entry) marshal() ([]byte, error) {
	if e.table != nil {
		return e.table.MarshalJSON()
	}
	return e.raw, nil
}
