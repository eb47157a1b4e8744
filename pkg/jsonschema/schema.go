package jsonschema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Type enumerates the JSON Schema primitive types understood by the form
// pipeline.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeNull    Type = "null"
)

// Known reports whether t is one of the supported schema types.
func (t Type) Known() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeNull:
		return true
	default:
		return false
	}
}

// Numeric reports whether t is number or integer.
func (t Type) Numeric() bool {
	return t == TypeNumber || t == TypeInteger
}

const extensionPrefix = "x-"

// Schema is the in-memory representation of the JSON Schema subset consumed by
// the validator and the dynamic field inferrer. Pointer constraints are nil when
// the keyword is absent so a zero bound stays distinguishable from "unset".
// DataType and Operators are library extensions used by query fields.
type Schema struct {
	Type             Type           `json:"type,omitempty"`
	Title            string         `json:"title,omitempty"`
	Description      string         `json:"description,omitempty"`
	Format           string         `json:"format,omitempty"`
	Default          any            `json:"default,omitempty"`
	Examples         []any          `json:"examples,omitempty"`
	Enum             []any          `json:"enum,omitempty"`
	Properties       *Properties    `json:"properties,omitempty"`
	Items            *Schema        `json:"items,omitempty"`
	Required         []string       `json:"required,omitempty"`
	MinLength        *int           `json:"minLength,omitempty"`
	MaxLength        *int           `json:"maxLength,omitempty"`
	Minimum          *float64       `json:"minimum,omitempty"`
	Maximum          *float64       `json:"maximum,omitempty"`
	ExclusiveMinimum *float64       `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64       `json:"exclusiveMaximum,omitempty"`
	MinItems         *int           `json:"minItems,omitempty"`
	MaxItems         *int           `json:"maxItems,omitempty"`
	Pattern          string         `json:"pattern,omitempty"`
	DataType         string         `json:"dataType,omitempty"`
	Operators        []string       `json:"operators,omitempty"`
	Extensions       map[string]any `json:"-"`
}

type schemaAlias Schema

// UnmarshalJSON decodes the schema keywords and captures any x-* keys into
// Extensions.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var alias schemaAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if !strings.HasPrefix(key, extensionPrefix) {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("jsonschema: extension %q: %w", key, err)
		}
		if alias.Extensions == nil {
			alias.Extensions = make(map[string]any)
		}
		alias.Extensions[key] = decoded
	}
	*s = Schema(alias)
	return nil
}

// MarshalJSON encodes the schema, inlining Extensions as top-level keys.
func (s Schema) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(schemaAlias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extensions) == 0 {
		return payload, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(payload, &merged); err != nil {
		return nil, err
	}
	for key, value := range s.Extensions {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: extension %q: %w", key, err)
		}
		merged[key] = encoded
	}
	return json.Marshal(merged)
}

// Clone returns a deep copy so callers can hand the result to validators while
// continuing to mutate the original.
func (s Schema) Clone() Schema {
	out := s
	out.Examples = cloneSlice(s.Examples)
	out.Enum = cloneSlice(s.Enum)
	out.Required = append([]string(nil), s.Required...)
	out.Operators = append([]string(nil), s.Operators...)
	out.MinLength = cloneInt(s.MinLength)
	out.MaxLength = cloneInt(s.MaxLength)
	out.MinItems = cloneInt(s.MinItems)
	out.MaxItems = cloneInt(s.MaxItems)
	out.Minimum = cloneFloat(s.Minimum)
	out.Maximum = cloneFloat(s.Maximum)
	out.ExclusiveMinimum = cloneFloat(s.ExclusiveMinimum)
	out.ExclusiveMaximum = cloneFloat(s.ExclusiveMaximum)
	if s.Properties != nil {
		out.Properties = s.Properties.Clone()
	}
	if s.Items != nil {
		items := s.Items.Clone()
		out.Items = &items
	}
	if s.Extensions != nil {
		out.Extensions = make(map[string]any, len(s.Extensions))
		for key, value := range s.Extensions {
			out.Extensions[key] = value
		}
	}
	if len(out.Required) == 0 {
		out.Required = nil
	}
	if len(out.Operators) == 0 {
		out.Operators = nil
	}
	return out
}

// IsRequired reports whether name appears in the required list.
func (s Schema) IsRequired(name string) bool {
	for _, candidate := range s.Required {
		if candidate == name {
			return true
		}
	}
	return false
}

// Label returns the schema title, falling back to the supplied name.
func (s Schema) Label(name string) string {
	if title := strings.TrimSpace(s.Title); title != "" {
		return title
	}
	return name
}

// Placeholder returns the first example rendered as text, mirroring how the
// builders record placeholders.
func (s Schema) Placeholder() string {
	if len(s.Examples) == 0 || s.Examples[0] == nil {
		return ""
	}
	return fmt.Sprint(s.Examples[0])
}

// Check reports the first structural problem with the schema node itself.
// Child schemas are not visited; the validator checks each node as it walks
// the value tree so problems stay attributed to the right path.
func (s Schema) Check() error {
	if s.Type != "" && !s.Type.Known() {
		return fmt.Errorf("jsonschema: unknown type %q", s.Type)
	}
	if s.Items != nil && s.Type != "" && s.Type != TypeArray {
		return fmt.Errorf("jsonschema: items declared on %s schema", s.Type)
	}
	if s.Properties != nil && s.Properties.Len() > 0 && s.Type != "" && s.Type != TypeObject {
		return fmt.Errorf("jsonschema: properties declared on %s schema", s.Type)
	}
	if s.MinLength != nil && *s.MinLength < 0 {
		return errors.New("jsonschema: minLength must be non-negative")
	}
	if s.MaxLength != nil && *s.MaxLength < 0 {
		return errors.New("jsonschema: maxLength must be non-negative")
	}
	if s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength {
		return errors.New("jsonschema: minLength exceeds maxLength")
	}
	if s.MinItems != nil && *s.MinItems < 0 {
		return errors.New("jsonschema: minItems must be non-negative")
	}
	if s.MaxItems != nil && *s.MaxItems < 0 {
		return errors.New("jsonschema: maxItems must be non-negative")
	}
	if s.MinItems != nil && s.MaxItems != nil && *s.MinItems > *s.MaxItems {
		return errors.New("jsonschema: minItems exceeds maxItems")
	}
	if s.Minimum != nil && s.Maximum != nil && *s.Minimum > *s.Maximum {
		return errors.New("jsonschema: minimum exceeds maximum")
	}
	if s.Minimum != nil && s.ExclusiveMaximum != nil && *s.Minimum >= *s.ExclusiveMaximum {
		return errors.New("jsonschema: minimum is not below exclusiveMaximum")
	}
	if s.ExclusiveMinimum != nil && s.Maximum != nil && *s.ExclusiveMinimum >= *s.Maximum {
		return errors.New("jsonschema: exclusiveMinimum is not below maximum")
	}
	if s.ExclusiveMinimum != nil && s.ExclusiveMaximum != nil && *s.ExclusiveMinimum >= *s.ExclusiveMaximum {
		return errors.New("jsonschema: exclusiveMinimum is not below exclusiveMaximum")
	}
	if s.Enum != nil && len(s.Enum) == 0 {
		return errors.New("jsonschema: enum lists no values")
	}
	if s.Pattern != "" {
		if _, err := regexp.Compile(s.Pattern); err != nil {
			return fmt.Errorf("jsonschema: invalid pattern: %w", err)
		}
	}
	return nil
}

// cloneSlice keeps nil and empty apart; an empty enum is a schema error.
func cloneSlice(in []any) []any {
	if in == nil {
		return nil
	}
	return append([]any{}, in...)
}

func cloneInt(in *int) *int {
	if in == nil {
		return nil
	}
	value := *in
	return &value
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	value := *in
	return &value
}

// Int returns a pointer to v. Handy for literal schemas in tests and callers.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
