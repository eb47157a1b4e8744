// Package prompt fills a value tree interactively from a schema. Each
// property becomes one terminal prompt and each answer is validated before
// the next property is asked.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Filler walks a schema and prompts for every property in declaration order.
type Filler struct {
	driver      PromptDriver
	validator   *validation.Validator
	inferrer    *field.Inferrer
	maxAttempts int
	logger      *zap.Logger
}

// New constructs a Filler. Without WithPromptDriver it talks to the terminal
// through survey.
func New(opts ...Option) *Filler {
	f := &Filler{
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	if f.validator == nil {
		f.validator = validation.New(validation.WithLogger(f.logger))
	}
	if f.inferrer == nil {
		f.inferrer = field.NewInferrer()
	}
	return f
}

// Fill prompts for every property of schema and returns the collected value
// tree. Prefilled values and schema defaults become prompt defaults. Optional
// properties answered with nothing are left out of the result.
func (f *Filler) Fill(ctx context.Context, schema jsonschema.Schema, prefill map[string]any) (map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("prompt: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if schema.Type != jsonschema.TypeObject {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSchema, schema.Type)
	}
	state := NewState(prefill)
	if err := f.fillObject(ctx, schema, "", state); err != nil {
		return nil, err
	}
	return state.Values(), nil
}

func (f *Filler) fillObject(ctx context.Context, schema jsonschema.Schema, prefix string, state *State) error {
	for _, name := range schema.Properties.Keys() {
		property, _ := schema.Properties.Get(name)
		path := values.Join(prefix, name)
		if property.Type == jsonschema.TypeObject {
			if property.Properties.Len() == 0 {
				f.logger.Debug("skipping free-form object", zap.String("path", path))
				continue
			}
			if err := f.fillObject(ctx, property, path, state); err != nil {
				return err
			}
			continue
		}
		if err := f.fillProperty(ctx, schema, name, path, state); err != nil {
			return err
		}
	}
	return nil
}

// fillProperty asks until the answer validates against the parent schema or
// the attempt budget runs out.
func (f *Filler) fillProperty(ctx context.Context, parent jsonschema.Schema, name, path string, state *State) error {
	property, _ := parent.Properties.Get(name)
	current, hasCurrent := state.GetValue(path)
	if !hasCurrent && property.Default != nil {
		current, hasCurrent = property.Default, true
	}

	var last *validation.Issue
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		answer, err := f.ask(ctx, name, property, current, hasCurrent)
		if err != nil {
			return err
		}
		issue := f.validator.ValidateProperty(parent, name, answer)
		if issue == nil {
			if values.IsEmpty(answer) {
				state.Delete(path)
			} else {
				state.SetValue(path, answer)
			}
			return nil
		}
		last = issue
		f.logger.Debug("answer rejected", zap.String("path", path), zap.String("kind", string(issue.Kind)))
		if err := f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", path, issue.Message)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrTooManyAttempts, path, last.Message)
}

func (f *Filler) ask(ctx context.Context, name string, property jsonschema.Schema, current any, hasCurrent bool) (any, error) {
	label := property.Label(name)
	help := property.Description
	if help == "" {
		help = property.Placeholder()
	}

	switch {
	case len(property.Enum) > 0 && property.Type != jsonschema.TypeArray:
		options := stringify(property.Enum)
		defaultIdx := -1
		if hasCurrent {
			defaultIdx = indexOf(options, values.Text(current))
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: defaultIdx, Help: help})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(property.Enum) {
			return nil, nil
		}
		return property.Enum[idx], nil

	case property.Type == jsonschema.TypeBoolean:
		def, _ := current.(bool)
		return f.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})

	case property.Type == jsonschema.TypeArray && property.Items != nil && len(property.Items.Enum) > 0:
		options := stringify(property.Items.Enum)
		var defaults []int
		if items, ok := values.Slice(current); ok {
			defaults = indicesOf(options, stringify(items))
		}
		picked, err := f.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: options, Defaults: defaults, Help: help})
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(property.Items.Enum) {
				out = append(out, property.Items.Enum[idx])
			}
		}
		return out, nil

	case property.Type == jsonschema.TypeArray:
		def := ""
		if items, ok := values.Slice(current); ok {
			def = strings.Join(stringify(items), ", ")
		}
		text, err := f.driver.Input(ctx, InputConfig{Message: label + " (comma separated)", Default: def, Help: help})
		if err != nil {
			return nil, err
		}
		return splitList(text, property.Items), nil

	case property.Type.Numeric():
		text, err := f.driver.Input(ctx, InputConfig{Message: label, Default: textOf(current, hasCurrent), Help: help})
		if err != nil {
			return nil, err
		}
		return parseNumber(text, property.Type), nil
	}

	def := textOf(current, hasCurrent)
	if property.Format == "password" {
		return f.driver.Password(ctx, InputConfig{Message: label, Help: help})
	}
	descriptor := f.inferrer.Field(name, property)
	if descriptor.Type == field.TypeMarkdown || descriptor.Options.Bool("multiline") {
		return f.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def, Help: help})
	}
	return f.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help})
}

func textOf(v any, ok bool) string {
	if !ok {
		return ""
	}
	return values.Text(v)
}

// parseNumber converts numeric answers. Text that does not parse is returned
// as is so the validator reports it.
func parseNumber(text string, t jsonschema.Type) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if t == jsonschema.TypeInteger {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return trimmed
}

func splitList(text string, items *jsonschema.Schema) []any {
	var out []any
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if items != nil && items.Type.Numeric() {
			out = append(out, parseNumber(part, items.Type))
			continue
		}
		if items != nil && items.Type == jsonschema.TypeBoolean {
			if b, err := strconv.ParseBool(part); err == nil {
				out = append(out, b)
				continue
			}
		}
		out = append(out, part)
	}
	return out
}

func stringify(items []any) []string {
	out := make([]string, len(items))
	for idx, item := range items {
		out[idx] = values.Text(item)
	}
	return out
}
