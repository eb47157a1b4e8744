package jsonschema

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Properties is an insertion-ordered map of property schemas. Declaration
// order drives form field order, so decoding preserves the document order and
// encoding writes it back unchanged. The zero value is ready to use.
type Properties struct {
	keys   []string
	values map[string]Schema
}

// NewProperties returns an empty ordered property map.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Schema)}
}

// Set assigns schema under name. Overwriting an existing name keeps its
// original position.
func (p *Properties) Set(name string, schema Schema) {
	if p.values == nil {
		p.values = make(map[string]Schema)
	}
	if _, exists := p.values[name]; !exists {
		p.keys = append(p.keys, name)
	}
	p.values[name] = schema
}

// Get returns the schema stored under name.
func (p *Properties) Get(name string) (Schema, bool) {
	if p == nil || p.values == nil {
		return Schema{}, false
	}
	schema, ok := p.values[name]
	return schema, ok
}

// Has reports whether name is declared.
func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Keys returns property names in declaration order.
func (p *Properties) Keys() []string {
	if p == nil || len(p.keys) == 0 {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of declared properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Clone deep copies the map and every nested schema.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	out := &Properties{
		keys:   append([]string(nil), p.keys...),
		values: make(map[string]Schema, len(p.values)),
	}
	for name, schema := range p.values {
		out.values[name] = schema.Clone()
	}
	return out
}

// MarshalJSON writes properties in declaration order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, name := range p.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.values[name])
		if err != nil {
			return nil, fmt.Errorf("jsonschema: property %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON streams the object so the document key order survives.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("jsonschema: properties: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("jsonschema: properties must be an object")
	}

	p.keys = nil
	p.values = make(map[string]Schema)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("jsonschema: properties: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("jsonschema: properties: unexpected key %v", tok)
		}
		var schema Schema
		if err := dec.Decode(&schema); err != nil {
			return fmt.Errorf("jsonschema: property %q: %w", name, err)
		}
		p.Set(name, schema)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("jsonschema: properties: %w", err)
	}
	return nil
}
