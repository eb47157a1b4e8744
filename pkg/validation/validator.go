package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

// Option customises a Validator.
type Option func(*Validator)

// WithLogger routes schema problems to the supplied logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Validator checks value trees against schemas. It never mutates its inputs
// and is safe for concurrent use; compiled patterns are cached.
type Validator struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		logger:   zap.NewNop(),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate checks value against schema with a shared default Validator.
func Validate(schema jsonschema.Schema, value any) Result {
	return defaultValidator.Validate(schema, value)
}

// Validate walks every declared property and collects one issue per failing
// path. Problems are never fail-fast: the caller gets the complete map.
func (v *Validator) Validate(schema jsonschema.Schema, value any) Result {
	state := &walk{validator: v, issues: make(map[string]Issue)}
	state.node("", schema, value, true)
	result := Result{Valid: len(state.issues) == 0}
	if !result.Valid {
		result.Errors = state.issues
	}
	return result
}

// ValidateProperty checks a single top-level property of an object schema.
// Interactive front-ends use it to check one answer at a time.
func (v *Validator) ValidateProperty(schema jsonschema.Schema, name string, value any) *Issue {
	state := &walk{validator: v, issues: make(map[string]Issue)}
	property, declared := schema.Properties.Get(name)
	switch {
	case !declared:
		state.fail(name, KindSchemaError, "property is not declared by the schema", nil)
	case schema.IsRequired(name) && values.IsEmpty(value) && property.Check() == nil:
		state.fail(name, KindMissingRequiredField, "this field is required", nil)
	default:
		state.node(name, property, value, schema.IsRequired(name) || !values.IsEmpty(value))
	}
	if issue, ok := state.issues[name]; ok {
		return &issue
	}
	for _, issue := range state.Issues() {
		return &issue
	}
	return nil
}

type walk struct {
	validator *Validator
	issues    map[string]Issue
}

func (w *walk) Issues() Issues {
	return Result{Errors: w.issues}.Issues()
}

func (w *walk) fail(path string, kind Kind, message string, params map[string]any) {
	if _, exists := w.issues[path]; exists {
		return
	}
	w.issues[path] = Issue{Path: path, Kind: kind, Message: message, Params: params}
}

// node validates value at path. present is false when an optional property is
// absent or empty, in which case only schema checks run.
func (w *walk) node(path string, schema jsonschema.Schema, value any, present bool) {
	if err := schema.Check(); err != nil {
		w.validator.logger.Warn("schema fragment rejected",
			zap.String("path", path), zap.Error(err))
		w.fail(path, KindSchemaError, strings.TrimPrefix(err.Error(), "jsonschema: "), nil)
		return
	}
	if !present {
		return
	}
	if value == nil && schema.Type == jsonschema.TypeNull {
		return
	}

	if len(schema.Enum) > 0 && !inEnum(schema.Enum, value) {
		w.fail(path, KindNotInEnum, "value is not one of the allowed options", map[string]any{"enum": schema.Enum})
		return
	}

	switch schema.Type {
	case jsonschema.TypeString:
		w.str(path, schema, value)
	case jsonschema.TypeNumber, jsonschema.TypeInteger:
		w.number(path, schema, value)
	case jsonschema.TypeBoolean:
		if _, ok := value.(bool); !ok {
			w.fail(path, KindTypeMismatch, "value must be a boolean", nil)
		}
	case jsonschema.TypeArray:
		w.array(path, schema, value)
	case jsonschema.TypeObject:
		w.object(path, schema, value)
	case jsonschema.TypeNull:
		w.fail(path, KindTypeMismatch, "value must be null", nil)
	}
}

func (w *walk) str(path string, schema jsonschema.Schema, value any) {
	text, ok := value.(string)
	if !ok {
		w.fail(path, KindTypeMismatch, "value must be a string", nil)
		return
	}
	length := utf8.RuneCountInString(strings.TrimSpace(text))
	if schema.MinLength != nil && length < *schema.MinLength {
		w.fail(path, KindTooShort, fmt.Sprintf("must be at least %d characters", *schema.MinLength),
			map[string]any{"min": *schema.MinLength, "got": length})
		return
	}
	if schema.MaxLength != nil && length > *schema.MaxLength {
		w.fail(path, KindTooLong, fmt.Sprintf("must be at most %d characters", *schema.MaxLength),
			map[string]any{"max": *schema.MaxLength, "got": length})
		return
	}
	if schema.Pattern != "" {
		re, err := w.validator.pattern(schema.Pattern)
		if err != nil {
			w.fail(path, KindSchemaError, "invalid pattern", nil)
			return
		}
		if !re.MatchString(text) {
			w.fail(path, KindPatternMismatch, "value does not match the expected format",
				map[string]any{"pattern": schema.Pattern})
		}
	}
}

func (w *walk) number(path string, schema jsonschema.Schema, value any) {
	if _, isBool := value.(bool); isBool {
		w.fail(path, KindTypeMismatch, "value must be a number", nil)
		return
	}
	n, ok := values.Number(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		w.fail(path, KindTypeMismatch, "value must be a number", nil)
		return
	}
	if schema.Type == jsonschema.TypeInteger && n != math.Trunc(n) {
		w.fail(path, KindNotAnInteger, "value must be a whole number", map[string]any{"got": n})
		return
	}
	params := map[string]any{"got": n}
	outside := false
	if schema.Minimum != nil {
		params["min"] = *schema.Minimum
		outside = outside || n < *schema.Minimum
	}
	if schema.ExclusiveMinimum != nil {
		params["exclusiveMin"] = *schema.ExclusiveMinimum
		outside = outside || n <= *schema.ExclusiveMinimum
	}
	if schema.Maximum != nil {
		params["max"] = *schema.Maximum
		outside = outside || n > *schema.Maximum
	}
	if schema.ExclusiveMaximum != nil {
		params["exclusiveMax"] = *schema.ExclusiveMaximum
		outside = outside || n >= *schema.ExclusiveMaximum
	}
	if outside {
		w.fail(path, KindOutOfRange, rangeMessage(schema), params)
	}
}

func (w *walk) array(path string, schema jsonschema.Schema, value any) {
	items, ok := values.Slice(value)
	if !ok {
		w.fail(path, KindTypeMismatch, "value must be a list", nil)
		return
	}
	if schema.MinItems != nil && len(items) < *schema.MinItems {
		w.fail(path, KindTooFewItems, fmt.Sprintf("must contain at least %d items", *schema.MinItems),
			map[string]any{"min": *schema.MinItems, "got": len(items)})
		return
	}
	if schema.MaxItems != nil && len(items) > *schema.MaxItems {
		w.fail(path, KindTooManyItems, fmt.Sprintf("must contain at most %d items", *schema.MaxItems),
			map[string]any{"max": *schema.MaxItems, "got": len(items)})
		return
	}
	if schema.Items == nil {
		return
	}
	for idx, item := range items {
		w.node(values.Join(path, fmt.Sprint(idx)), *schema.Items, item, true)
	}
}

func (w *walk) object(path string, schema jsonschema.Schema, value any) {
	fields, ok := values.Map(value)
	if !ok {
		w.fail(path, KindTypeMismatch, "value must be an object", nil)
		return
	}
	for _, name := range schema.Required {
		if !schema.Properties.Has(name) {
			w.fail(values.Join(path, name), KindSchemaError, "required property is not declared", nil)
		}
	}
	for _, name := range schema.Properties.Keys() {
		property, _ := schema.Properties.Get(name)
		childPath := values.Join(path, name)
		child, exists := fields[name]
		empty := !exists || values.IsEmpty(child)
		if empty && schema.IsRequired(name) {
			if err := property.Check(); err != nil {
				w.fail(childPath, KindSchemaError, strings.TrimPrefix(err.Error(), "jsonschema: "), nil)
				continue
			}
			w.fail(childPath, KindMissingRequiredField, "this field is required", nil)
			continue
		}
		w.node(childPath, property, child, !empty)
	}
}

func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	v.mu.RLock()
	re, ok := v.patterns[expr]
	v.mu.RUnlock()
	if ok {
		return re, nil
	}
	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.patterns[expr] = compiled
	v.mu.Unlock()
	return compiled, nil
}

func inEnum(options []any, value any) bool {
	for _, option := range options {
		if values.Equal(option, value) {
			return true
		}
	}
	return false
}

func rangeMessage(schema jsonschema.Schema) string {
	lower, upper := schema.Minimum, schema.Maximum
	if lower == nil {
		lower = schema.ExclusiveMinimum
	}
	if upper == nil {
		upper = schema.ExclusiveMaximum
	}
	switch {
	case lower != nil && upper != nil:
		return fmt.Sprintf("must be between %s and %s", values.Text(*lower), values.Text(*upper))
	case lower != nil:
		return fmt.Sprintf("must be at least %s", values.Text(*lower))
	case upper != nil:
		return fmt.Sprintf("must be at most %s", values.Text(*upper))
	default:
		return "value is out of range"
	}
}
