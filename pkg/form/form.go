// Package form glues the pieces together: it validates a value tree against a
// schema, infers a field descriptor per property, resolves display and form
// bindings and arranges the result with a layout.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// ErrInvalidSchema is returned when the root schema is not an object.
var ErrInvalidSchema = errors.New("form: schema must describe an object")

// Option configures a Composer.
type Option func(*Composer)

// WithValidator sets the validator.
func WithValidator(v *validation.Validator) Option {
	return func(c *Composer) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithRegistry sets the field registry.
func WithRegistry(r *field.Registry) Option {
	return func(c *Composer) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithInferrer sets the schema-to-field inferrer.
func WithInferrer(i *field.Inferrer) Option {
	return func(c *Composer) {
		if i != nil {
			c.inferrer = i
		}
	}
}

// WithLayoutComposer sets the layout composer.
func WithLayoutComposer(l *layout.Composer) Option {
	return func(c *Composer) {
		if l != nil {
			c.layouts = l
		}
	}
}

// WithLogger sets the logger. Components created by New share it.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Composer builds forms.
type Composer struct {
	validator *validation.Validator
	registry  *field.Registry
	inferrer  *field.Inferrer
	layouts   *layout.Composer
	logger    *zap.Logger
}

// New constructs a Composer. Unset collaborators get defaults.
func New(opts ...Option) *Composer {
	c := &Composer{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.validator == nil {
		c.validator = validation.New(validation.WithLogger(c.logger))
	}
	if c.registry == nil {
		c.registry = field.NewRegistry(field.WithLogger(c.logger))
	}
	if c.inferrer == nil {
		c.inferrer = field.NewInferrer()
	}
	if c.layouts == nil {
		c.layouts = layout.NewComposer(layout.WithRegistry(c.registry), layout.WithLogger(c.logger))
	}
	return c
}

// Request is one form composition. Data may be nil; absent properties take
// their schema defaults. A nil Layout arranges the fields as an item layout.
type Request struct {
	Schema               jsonschema.Schema
	Data                 map[string]any
	Layout               *layout.Layout
	State                layout.State
	ShowValidationErrors bool
}

// Field is one form field: its resolution, whether it is required and, when
// validation errors are shown, its first issue.
type Field struct {
	field.Resolved
	Required bool              `json:"required"`
	Issue    *validation.Issue `json:"issue,omitempty"`
}

// Invalid reports whether the field carries a validation issue.
func (f Field) Invalid() bool {
	return f.Issue != nil
}

// Result is a composed form.
type Result struct {
	Values     map[string]any    `json:"values"`
	Validation validation.Result `json:"validation"`
	Fields     []Field           `json:"fields"`
	View       layout.View       `json:"view"`
}

// Compose validates req.Data, resolves every property in declaration order
// and composes the layout. Validation failures are reported in the result,
// not as an error; the error covers cancellation, a non-object schema and
// layout problems, in which case the rest of the result is still populated.
func (c *Composer) Compose(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if req.Schema.Type != jsonschema.TypeObject {
		return Result{}, fmt.Errorf("%w: got %q", ErrInvalidSchema, req.Schema.Type)
	}

	data := WithDefaults(req.Schema, req.Data)
	result := Result{
		Values:     data,
		Validation: c.validator.Validate(req.Schema, data),
	}

	descriptors := c.inferrer.Fields(req.Schema)
	result.Fields = make([]Field, len(descriptors))
	for idx, descriptor := range descriptors {
		f := Field{
			Resolved: c.registry.RenderFrom(descriptor, data),
			Required: req.Schema.IsRequired(descriptor.Key),
		}
		if req.ShowValidationErrors {
			f.Issue = issueFor(result.Validation, descriptor.Key)
		}
		result.Fields[idx] = f
	}

	l := layout.Layout{Type: layout.KindItem}
	if req.Layout != nil {
		l = *req.Layout
	}
	if !l.Options.Has("fields") && needsFields(l.Type) {
		l = l.WithFields(descriptors)
	}
	view, err := c.layouts.Compose(l, data, req.State)
	result.View = view
	if err != nil {
		c.logger.Warn("form layout degraded", zap.String("layout", string(l.Type)), zap.Error(err))
		return result, fmt.Errorf("form: compose layout: %w", err)
	}
	if !result.Validation.Valid {
		c.logger.Debug("form has validation issues", zap.Int("count", len(result.Validation.Errors)))
	}
	return result, nil
}

func needsFields(kind layout.Kind) bool {
	switch kind {
	case layout.KindItem, layout.KindTable, layout.KindSimpleTable, layout.KindQuerySearchTable:
		return true
	}
	return false
}

// issueFor returns the issue at key, or the first nested issue below it.
func issueFor(result validation.Result, key string) *validation.Issue {
	if issue, ok := result.Errors[key]; ok {
		return &issue
	}
	for _, issue := range result.Issues() {
		if strings.HasPrefix(issue.Path, key+".") {
			issue := issue
			return &issue
		}
	}
	return nil
}

// Defaults builds a value tree from the schema's default values. Nested
// objects without any defaults are omitted.
func Defaults(schema jsonschema.Schema) map[string]any {
	out := map[string]any{}
	for _, name := range schema.Properties.Keys() {
		property, _ := schema.Properties.Get(name)
		if value, ok := defaultValue(property); ok {
			out[name] = value
		}
	}
	return out
}

func defaultValue(schema jsonschema.Schema) (any, bool) {
	if schema.Default != nil {
		return copyValue(schema.Default), true
	}
	if schema.Type == jsonschema.TypeObject && schema.Properties.Len() > 0 {
		nested := Defaults(schema)
		if len(nested) > 0 {
			return nested, true
		}
	}
	return nil, false
}

// WithDefaults returns a copy of data where absent properties take their
// schema default. Present values, empty ones included, are kept; data is not
// modified.
func WithDefaults(schema jsonschema.Schema, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	for _, name := range schema.Properties.Keys() {
		property, _ := schema.Properties.Get(name)
		current, exists := out[name]
		if !exists {
			if value, ok := defaultValue(property); ok {
				out[name] = value
			}
			continue
		}
		if property.Type == jsonschema.TypeObject {
			if nested, ok := values.Map(current); ok {
				out[name] = WithDefaults(property, nested)
			}
		}
	}
	return out
}

func copyValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for key, value := range m {
			out[key] = copyValue(value)
		}
		return out
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		for idx, value := range s {
			out[idx] = copyValue(value)
		}
		return out
	}
	return v
}
