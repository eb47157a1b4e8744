package field

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

// Schema extensions the inferrer honours before running matchers.
const (
	ExtensionFieldType    = "x-field-type"
	ExtensionFieldOptions = "x-field-options"
)

// Matcher decides whether a field type should handle the named property.
type Matcher func(name string, schema jsonschema.Schema) bool

type rule struct {
	fieldType Type
	priority  int
	match     Matcher
	order     int
}

// Inferrer picks a field type for a schema property from explicit extensions
// or registered matchers. Higher priority wins; ties fall back to registration
// order. Properties nothing matches become text fields.
type Inferrer struct {
	mu    sync.RWMutex
	rules []rule
}

// NewInferrer constructs an inferrer with the built-in matchers registered.
func NewInferrer() *Inferrer {
	inf := &Inferrer{}
	inf.registerBuiltins()
	return inf
}

// Register adds a matcher for fieldType. Empty tags and nil matchers are
// ignored.
func (i *Inferrer) Register(fieldType Type, priority int, matcher Matcher) {
	if i == nil || matcher == nil {
		return
	}
	trimmed := Type(strings.TrimSpace(string(fieldType)))
	if trimmed == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.rules = append(i.rules, rule{
		fieldType: trimmed,
		priority:  priority,
		match:     matcher,
		order:     len(i.rules),
	})
}

// Infer returns the field type for a property.
func (i *Inferrer) Infer(name string, schema jsonschema.Schema) Type {
	if explicit := strings.TrimSpace(values.Text(schema.Extensions[ExtensionFieldType])); explicit != "" {
		return Type(explicit)
	}
	if i == nil {
		return TypeText
	}
	i.mu.RLock()
	rules := append([]rule(nil), i.rules...)
	i.mu.RUnlock()
	sort.SliceStable(rules, func(a, b int) bool {
		if rules[a].priority == rules[b].priority {
			return rules[a].order < rules[b].order
		}
		return rules[a].priority > rules[b].priority
	})
	for _, entry := range rules {
		if entry.match(name, schema) {
			return entry.fieldType
		}
	}
	return TypeText
}

// Field builds the descriptor for one property: the inferred type, the
// property name as key, the schema title as label, and options derived from
// the schema merged with any x-field-options extension.
func (i *Inferrer) Field(name string, schema jsonschema.Schema) Field {
	fieldType := i.Infer(name, schema)
	opts := Options{}
	if placeholder := schema.Placeholder(); placeholder != "" {
		opts["placeholder"] = placeholder
	}
	if schema.Default != nil {
		opts["default"] = values.Text(schema.Default)
	}
	switch {
	case schema.Type == jsonschema.TypeBoolean:
		opts["control"] = ControlToggle
	case fieldType == TypeEnum && len(schema.Enum) > 0:
		items := make(map[string]any, len(schema.Enum))
		for _, option := range schema.Enum {
			text := values.Text(option)
			items[text] = text
		}
		opts["items"] = items
	case fieldType == TypeList && schema.Items != nil:
		item := Field{Type: i.Infer("", *schema.Items)}
		opts["item"] = map[string]any{"type": string(item.Type)}
	case fieldType == TypeDatetime && schema.Format == "date":
		opts["display_format"] = "YYYY-MM-DD"
	case fieldType == TypeText && schema.MaxLength != nil && *schema.MaxLength > 255:
		opts["multiline"] = true
	}
	if extra, ok := values.Map(schema.Extensions[ExtensionFieldOptions]); ok {
		for key, value := range extra {
			opts[key] = value
		}
	}
	if len(opts) == 0 {
		opts = nil
	}
	return Field{Type: fieldType, Key: name, Name: schema.Label(""), Options: opts}
}

// Fields returns descriptors for every property of an object schema in
// declaration order.
func (i *Inferrer) Fields(schema jsonschema.Schema) []Field {
	keys := schema.Properties.Keys()
	out := make([]Field, 0, len(keys))
	for _, name := range keys {
		property, _ := schema.Properties.Get(name)
		out = append(out, i.Field(name, property))
	}
	return out
}

func (i *Inferrer) registerBuiltins() {
	i.Register(TypeEnum, 90, func(_ string, s jsonschema.Schema) bool {
		return len(s.Enum) > 0 && s.Type != jsonschema.TypeArray && s.Type != jsonschema.TypeObject
	})

	i.Register(TypeTags, 85, func(name string, s jsonschema.Schema) bool {
		if s.Type != jsonschema.TypeObject && s.Type != jsonschema.TypeArray {
			return false
		}
		return strings.EqualFold(name, "tags") && s.Properties.Len() == 0 &&
			(s.Items == nil || s.Items.Type == jsonschema.TypeObject)
	})

	i.Register(TypeList, 80, func(_ string, s jsonschema.Schema) bool {
		return s.Type == jsonschema.TypeArray
	})

	i.Register(TypeSize, 70, func(_ string, s jsonschema.Schema) bool {
		if !s.Type.Numeric() {
			return false
		}
		format := strings.ToLower(strings.TrimSpace(s.Format))
		return format == "bytes" || format == "size"
	})

	i.Register(TypeDatetime, 60, func(_ string, s jsonschema.Schema) bool {
		format := strings.ToLower(strings.TrimSpace(s.Format))
		return format == "date-time" || format == "date" || format == "timestamp"
	})

	i.Register(TypeMarkdown, 55, func(_ string, s jsonschema.Schema) bool {
		if s.Type != jsonschema.TypeString && s.Type != "" {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(s.Format), "markdown")
	})

	i.Register(TypeDict, 50, func(_ string, s jsonschema.Schema) bool {
		return s.Type == jsonschema.TypeObject
	})

	i.Register(TypeNumber, 40, func(_ string, s jsonschema.Schema) bool {
		return s.Type.Numeric()
	})
}
