// Package field resolves dynamic field descriptors to display and form
// strategies. A descriptor names a type tag, the key to read from the data
// and per-type options; the Registry maps the tag to a Handler.
package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-dynform/internal/labels"
	"github.com/goliatone/go-dynform/internal/values"
)

// Type is a field type tag such as "text" or "datetime".
type Type string

// Built-in field type tags.
const (
	TypeText     Type = "text"
	TypeString   Type = "string"
	TypeNumber   Type = "number"
	TypeBadge    Type = "badge"
	TypeDatetime Type = "datetime"
	TypeEnum     Type = "enum"
	TypeList     Type = "list"
	TypeTags     Type = "tags"
	TypeDict     Type = "dict"
	TypeSize     Type = "size"
	TypeState    Type = "state"
	TypeMarkdown Type = "markdown"
	TypeRaw      Type = "raw"
)

// Field describes how one value is read and rendered. Treat it as immutable
// once parsed.
type Field struct {
	Type    Type    `json:"type"`
	Key     string  `json:"key"`
	Name    string  `json:"name,omitempty"`
	Options Options `json:"options,omitempty"`
}

// Label returns Name, falling back to a humanized Key.
func (f Field) Label() string {
	if name := strings.TrimSpace(f.Name); name != "" {
		return name
	}
	return labels.Humanize(f.Key)
}

// Lookup reads the field's value from data using its dotted key.
func (f Field) Lookup(data any) any {
	value, _ := values.Lookup(data, f.Key)
	return value
}

// Parse builds a Field from a decoded descriptor such as
// {"type": "enum", "key": "state", "name": "State", "options": {...}}.
// A bare string is treated as a text field keyed by that string. A missing
// type defaults to text.
func Parse(raw any) (Field, error) {
	if key, ok := raw.(string); ok {
		key = strings.TrimSpace(key)
		if key == "" {
			return Field{}, fmt.Errorf("field: empty key")
		}
		return Field{Type: TypeText, Key: key}, nil
	}
	m, ok := values.Map(raw)
	if !ok {
		return Field{}, fmt.Errorf("field: descriptor must be an object, got %T", raw)
	}
	f := Field{
		Type: Type(strings.TrimSpace(values.Text(m["type"]))),
		Key:  strings.TrimSpace(values.Text(m["key"])),
		Name: values.Text(m["name"]),
	}
	if f.Type == "" {
		f.Type = TypeText
	}
	if opts, ok := values.Map(m["options"]); ok {
		f.Options = Options(opts)
	}
	return f, nil
}

// ParseList parses every descriptor in raw, stopping at the first failure.
func ParseList(raw any) ([]Field, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := values.Slice(raw)
	if !ok {
		return nil, fmt.Errorf("field: field list must be an array, got %T", raw)
	}
	out := make([]Field, 0, len(items))
	for idx, item := range items {
		f, err := Parse(item)
		if err != nil {
			return nil, fmt.Errorf("field: fields[%d]: %w", idx, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Options holds per-type settings. Getters tolerate missing keys and the loose
// typing of decoded JSON.
type Options map[string]any

// String returns the option rendered as text.
func (o Options) String(key string) string {
	if o == nil {
		return ""
	}
	return values.Text(o[key])
}

// StringOr returns the option or fallback when it is empty.
func (o Options) StringOr(key, fallback string) string {
	if s := o.String(key); s != "" {
		return s
	}
	return fallback
}

// Bool interprets booleans and the strings "true"/"false".
func (o Options) Bool(key string) bool {
	if o == nil {
		return false
	}
	switch typed := o[key].(type) {
	case bool:
		return typed
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(typed))
		return b
	}
	return false
}

// Int returns a numeric option truncated to int.
func (o Options) Int(key string) (int, bool) {
	if o == nil {
		return 0, false
	}
	n, ok := values.Number(o[key])
	return int(n), ok
}

// Map returns a nested option object.
func (o Options) Map(key string) Options {
	if o == nil {
		return nil
	}
	m, ok := values.Map(o[key])
	if !ok {
		return nil
	}
	return Options(m)
}

// Has reports whether key is set to a non-nil value.
func (o Options) Has(key string) bool {
	if o == nil {
		return false
	}
	v, ok := o[key]
	return ok && v != nil
}

// With returns a copy of o with key set. The receiver is not modified.
func (o Options) With(key string, value any) Options {
	out := make(Options, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	out[key] = value
	return out
}
