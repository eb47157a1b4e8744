package jsonschema

// DefaultRequiredMinLength is the minLength applied to required string and
// array properties by the builders. It is a simplification inherited from the
// form designer, not general-purpose length validation.
const DefaultRequiredMinLength = 2

// PropertyBuilder constructs property fragments. RequiredMinLength overrides
// DefaultRequiredMinLength when positive.
type PropertyBuilder struct {
	RequiredMinLength int
}

var defaultBuilder = PropertyBuilder{RequiredMinLength: DefaultRequiredMinLength}

// StringProperty builds a string fragment with the default builder.
func StringProperty(label string, required bool, placeholder string, extra ...Schema) Schema {
	return defaultBuilder.String(label, required, placeholder, extra...)
}

// IntegerProperty builds an integer fragment with the default builder.
func IntegerProperty(label string, required bool, placeholder string, extra ...Schema) Schema {
	return defaultBuilder.Integer(label, required, placeholder, extra...)
}

// ArrayProperty builds an array fragment with the default builder. An empty
// itemType leaves Items unset.
func ArrayProperty(label string, required bool, placeholder string, itemType Type, extra ...Schema) Schema {
	return defaultBuilder.Array(label, required, placeholder, itemType, extra...)
}

// EnumProperty builds a string fragment restricted to values.
func EnumProperty(label string, values []any, required bool, extra ...Schema) Schema {
	return defaultBuilder.Enum(label, values, required, extra...)
}

func (b PropertyBuilder) minLength() int {
	if b.RequiredMinLength > 0 {
		return b.RequiredMinLength
	}
	return DefaultRequiredMinLength
}

// String builds a string fragment. Required strings receive a minLength
// constraint; a placeholder is stored as the single example.
func (b PropertyBuilder) String(label string, required bool, placeholder string, extra ...Schema) Schema {
	result := Schema{Type: TypeString, Title: label}
	if placeholder != "" {
		result.Examples = []any{placeholder}
	}
	if required {
		result.MinLength = Int(b.minLength())
	}
	return Overlay(result, extra...)
}

// Integer builds an integer fragment. The required flag never adds a length
// constraint to integers.
func (b PropertyBuilder) Integer(label string, _ bool, placeholder string, extra ...Schema) Schema {
	result := Schema{Type: TypeInteger, Title: label}
	if placeholder != "" {
		result.Examples = []any{placeholder}
	}
	return Overlay(result, extra...)
}

// Array builds an array fragment with an optional element type.
func (b PropertyBuilder) Array(label string, required bool, placeholder string, itemType Type, extra ...Schema) Schema {
	result := Schema{Type: TypeArray, Title: label}
	if placeholder != "" {
		result.Examples = []any{placeholder}
	}
	if required {
		result.MinLength = Int(b.minLength())
	}
	if itemType != "" {
		result.Items = &Schema{Type: itemType}
	}
	return Overlay(result, extra...)
}

// Enum builds a string fragment whose value must be one of values. Values
// supplied here win over an enum carried by extra.
func (b PropertyBuilder) Enum(label string, values []any, required bool, extra ...Schema) Schema {
	overlays := append(append([]Schema(nil), extra...), Schema{Enum: cloneSlice(values)})
	return b.String(label, required, "", overlays...)
}

// Overlay applies each extra fragment on top of base in order. The merge is
// shallow and last-write-wins: every keyword set on an overlay replaces the
// keyword on the result, nested Properties and Items included.
func Overlay(base Schema, extra ...Schema) Schema {
	out := base.Clone()
	for _, overlay := range extra {
		o := overlay.Clone()
		if o.Type != "" {
			out.Type = o.Type
		}
		if o.Title != "" {
			out.Title = o.Title
		}
		if o.Description != "" {
			out.Description = o.Description
		}
		if o.Format != "" {
			out.Format = o.Format
		}
		if o.Default != nil {
			out.Default = o.Default
		}
		if o.Examples != nil {
			out.Examples = o.Examples
		}
		if o.Enum != nil {
			out.Enum = o.Enum
		}
		if o.Properties != nil {
			out.Properties = o.Properties
		}
		if o.Items != nil {
			out.Items = o.Items
		}
		if o.Required != nil {
			out.Required = o.Required
		}
		if o.MinLength != nil {
			out.MinLength = o.MinLength
		}
		if o.MaxLength != nil {
			out.MaxLength = o.MaxLength
		}
		if o.Minimum != nil {
			out.Minimum = o.Minimum
		}
		if o.Maximum != nil {
			out.Maximum = o.Maximum
		}
		if o.ExclusiveMinimum != nil {
			out.ExclusiveMinimum = o.ExclusiveMinimum
		}
		if o.ExclusiveMaximum != nil {
			out.ExclusiveMaximum = o.ExclusiveMaximum
		}
		if o.MinItems != nil {
			out.MinItems = o.MinItems
		}
		if o.MaxItems != nil {
			out.MaxItems = o.MaxItems
		}
		if o.Pattern != "" {
			out.Pattern = o.Pattern
		}
		if o.DataType != "" {
			out.DataType = o.DataType
		}
		if o.Operators != nil {
			out.Operators = o.Operators
		}
		for key, value := range o.Extensions {
			if out.Extensions == nil {
				out.Extensions = make(map[string]any, len(o.Extensions))
			}
			out.Extensions[key] = value
		}
	}
	return out
}
