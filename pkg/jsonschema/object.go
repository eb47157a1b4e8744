package jsonschema

// ObjectOption configures an ObjectType.
type ObjectOption func(*ObjectType)

// WithRequiredMinLength changes the minLength threshold applied to required
// string and array properties added through the builder.
func WithRequiredMinLength(n int) ObjectOption {
	return func(o *ObjectType) {
		if n > 0 {
			o.builder.RequiredMinLength = n
		}
	}
}

// ObjectType owns a root object schema while a form author assembles it. It has
// a single writer: the Add* mutators are not safe for concurrent use. Once
// assembled, Schema hands out an independent copy for validation.
//
// Properties can be added or overwritten but never removed. Overwriting a name
// keeps its position and never duplicates it in the required list.
type ObjectType struct {
	properties *Properties
	required   []string
	builder    PropertyBuilder
}

// NewObjectType returns an empty object builder.
func NewObjectType(opts ...ObjectOption) *ObjectType {
	return NewObjectTypeFrom(nil, nil, opts...)
}

// NewObjectTypeFrom seeds the builder with existing properties and required
// names. The inputs are copied.
func NewObjectTypeFrom(properties *Properties, required []string, opts ...ObjectOption) *ObjectType {
	o := &ObjectType{
		properties: properties.Clone(),
		builder:    defaultBuilder,
	}
	if o.properties == nil {
		o.properties = NewProperties()
	}
	for _, name := range required {
		o.markRequired(name)
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	return o
}

// AddStringProperty assigns a string property and marks it required when
// requested.
func (o *ObjectType) AddStringProperty(name, label string, required bool, placeholder string, extra ...Schema) *ObjectType {
	return o.add(name, required, o.builder.String(label, required, placeholder, extra...))
}

// AddEnumProperty assigns a string property restricted to values.
func (o *ObjectType) AddEnumProperty(name, label string, values []any, required bool, extra ...Schema) *ObjectType {
	return o.add(name, required, o.builder.Enum(label, values, required, extra...))
}

// AddArrayProperty assigns an array property whose elements use itemType.
func (o *ObjectType) AddArrayProperty(name, label string, required bool, itemType Type, extra ...Schema) *ObjectType {
	return o.add(name, required, o.builder.Array(label, required, "", itemType, extra...))
}

// AddIntegerProperty assigns an integer property.
func (o *ObjectType) AddIntegerProperty(name, label string, required bool, placeholder string, extra ...Schema) *ObjectType {
	return o.add(name, required, o.builder.Integer(label, required, placeholder, extra...))
}

func (o *ObjectType) add(name string, required bool, schema Schema) *ObjectType {
	o.properties.Set(name, schema)
	if required {
		o.markRequired(name)
	}
	return o
}

func (o *ObjectType) markRequired(name string) {
	for _, existing := range o.required {
		if existing == name {
			return
		}
	}
	o.required = append(o.required, name)
}

// Required returns a copy of the required names in the order they were added.
func (o *ObjectType) Required() []string {
	return append([]string(nil), o.required...)
}

// Properties returns a copy of the ordered property map.
func (o *ObjectType) Properties() *Properties {
	return o.properties.Clone()
}

// Schema snapshots the builder into an object schema.
func (o *ObjectType) Schema() Schema {
	schema := Schema{
		Type:       TypeObject,
		Properties: o.properties.Clone(),
	}
	if len(o.required) > 0 {
		schema.Required = append([]string(nil), o.required...)
	}
	return schema
}
