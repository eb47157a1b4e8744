package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
	"github.com/goliatone/go-dynform/pkg/validation"
)

const storySchema = `{
  "type": "object",
  "properties": {
    "required_string": {
      "title": "string (required, minLength=4)",
      "type": "string",
      "default": "default string",
      "minLength": 4
    },
    "not_required_string": {
      "title": "string (not-required, placeholder)",
      "type": "string",
      "examples": ["type string"],
      "pattern": "^[0-9\\-]{1,5}$"
    },
    "required_number": {
      "title": "number (required, minimum=1, maximum=3)",
      "type": "number",
      "minimum": 1,
      "maximum": 3,
      "default": 1
    },
    "required_integer": {
      "title": "integer (required, minimum=0, maximum=5)",
      "type": "integer",
      "minimum": 0,
      "maximum": 5,
      "default": 1
    }
  },
  "required": ["required_string", "required_number", "required_integer"]
}`

func loadStorySchema(t *testing.T) jsonschema.Schema {
	t.Helper()
	schema, err := jsonschema.Decode([]byte(storySchema))
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	return schema
}

func TestDefaults(t *testing.T) {
	got := Defaults(loadStorySchema(t))
	want := map[string]any{
		"required_string":  "default string",
		"required_number":  float64(1),
		"required_integer": float64(1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults_Nested(t *testing.T) {
	inner := jsonschema.NewProperties()
	inner.Set("zone", jsonschema.Schema{Type: jsonschema.TypeString, Default: "a"})
	inner.Set("note", jsonschema.Schema{Type: jsonschema.TypeString})
	props := jsonschema.NewProperties()
	props.Set("placement", jsonschema.Schema{Type: jsonschema.TypeObject, Properties: inner})
	props.Set("empty", jsonschema.Schema{Type: jsonschema.TypeObject, Properties: jsonschema.NewProperties()})
	schema := jsonschema.Schema{Type: jsonschema.TypeObject, Properties: props}

	want := map[string]any{"placement": map[string]any{"zone": "a"}}
	if diff := cmp.Diff(want, Defaults(schema)); diff != "" {
		t.Fatalf("nested defaults mismatch (-want +got):\n%s", diff)
	}

	data := map[string]any{"placement": map[string]any{"note": "x"}}
	merged := WithDefaults(schema, data)
	want = map[string]any{"placement": map[string]any{"zone": "a", "note": "x"}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
	if _, touched := data["placement"].(map[string]any)["zone"]; touched {
		t.Fatalf("input was modified")
	}
}

func TestCompose_DefaultsAreValid(t *testing.T) {
	result, err := New().Compose(context.Background(), Request{Schema: loadStorySchema(t)})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !result.Validation.Valid {
		t.Fatalf("expected defaults to validate, got %v", result.Validation.Errors)
	}

	type summary struct {
		Key      string
		Label    string
		Required bool
		Text     string
	}
	got := make([]summary, len(result.Fields))
	for idx, f := range result.Fields {
		got[idx] = summary{Key: f.Field.Key, Label: f.Label, Required: f.Required, Text: f.Display.Text}
	}
	want := []summary{
		{Key: "required_string", Label: "string (required, minLength=4)", Required: true, Text: "default string"},
		{Key: "not_required_string", Label: "string (not-required, placeholder)", Text: ""},
		{Key: "required_number", Label: "number (required, minimum=1, maximum=3)", Required: true, Text: "1"},
		{Key: "required_integer", Label: "integer (required, minimum=0, maximum=5)", Required: true, Text: "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := result.Fields[1].Binding.Placeholder; got != "type string" {
		t.Fatalf("placeholder = %q", got)
	}
	if result.View.Type != layout.KindItem || len(result.View.Rows) != 4 {
		t.Fatalf("unexpected default view: %+v", result.View)
	}
}

func TestCompose_ShowValidationErrors(t *testing.T) {
	data := map[string]any{
		"required_string":     "abc",
		"not_required_string": "abcdef",
		"required_number":     5,
		"required_integer":    2.5,
	}
	schema := loadStorySchema(t)

	result, err := New().Compose(context.Background(), Request{Schema: schema, Data: data, ShowValidationErrors: true})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	got := map[string]validation.Kind{}
	for _, f := range result.Fields {
		if f.Invalid() {
			got[f.Field.Key] = f.Issue.Kind
		}
	}
	want := map[string]validation.Kind{
		"required_string":     validation.KindTooShort,
		"not_required_string": validation.KindPatternMismatch,
		"required_number":     validation.KindOutOfRange,
		"required_integer":    validation.KindNotAnInteger,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	result, _ = New().Compose(context.Background(), Request{Schema: schema, Data: data})
	if result.Validation.Valid {
		t.Fatalf("validation should still fail")
	}
	for _, f := range result.Fields {
		if f.Issue != nil {
			t.Fatalf("issues must stay hidden until requested: %s", f.Field.Key)
		}
	}
}

func TestCompose_ExplicitEmptyKeepsRequiredError(t *testing.T) {
	result, err := New().Compose(context.Background(), Request{
		Schema:               loadStorySchema(t),
		Data:                 map[string]any{"required_string": "  "},
		ShowValidationErrors: true,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := result.Validation.Kind("required_string"); got != validation.KindMissingRequiredField {
		t.Fatalf("expected MissingRequiredField, got %q", got)
	}
	if got := result.Values["required_number"]; got != float64(1) {
		t.Fatalf("absent property should take its default, got %v", got)
	}
}

func TestCompose_CustomLayout(t *testing.T) {
	l := layout.Layout{Type: layout.KindList, Options: map[string]any{
		"layouts": []any{
			map[string]any{"type": "item", "options": map[string]any{"fields": []any{"required_string"}}},
			map[string]any{"type": "timeline"},
		},
	}}
	result, err := New().Compose(context.Background(), Request{Schema: loadStorySchema(t), Layout: &l})
	if !errors.Is(err, layout.ErrUnsupportedLayout) {
		t.Fatalf("expected unsupported layout error, got %v", err)
	}
	if len(result.Fields) != 4 || len(result.View.Children) != 2 {
		t.Fatalf("result should stay populated: %+v", result.View)
	}
	if got := result.View.Children[0].Rows[0].Display.Text; got != "default string" {
		t.Fatalf("item child = %q", got)
	}
}

func TestCompose_Rejects(t *testing.T) {
	if _, err := New().Compose(context.Background(), Request{Schema: jsonschema.Schema{Type: jsonschema.TypeString}}); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Compose(ctx, Request{Schema: loadStorySchema(t)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
