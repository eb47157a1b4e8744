package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

func profileSchema() jsonschema.Schema {
	return jsonschema.NewObjectType().
		AddStringProperty("name", "Name", true, "Jane").
		AddIntegerProperty("age", "Age", false, "", jsonschema.Schema{Minimum: jsonschema.Float(0), Maximum: jsonschema.Float(130)}).
		AddEnumProperty("role", "Role", []any{"admin", "viewer"}, false).
		AddArrayProperty("tags", "Tags", false, jsonschema.TypeString).
		Schema()
}

func TestValidate_Kinds(t *testing.T) {
	cases := []struct {
		name string
		data map[string]any
		want map[string]Kind
	}{
		{name: "valid", data: map[string]any{"name": "Jane", "age": 30, "role": "admin"}},
		{name: "missing required", data: map[string]any{}, want: map[string]Kind{"name": KindMissingRequiredField}},
		{name: "whitespace counts as missing", data: map[string]any{"name": "   "}, want: map[string]Kind{"name": KindMissingRequiredField}},
		{name: "too short after trim", data: map[string]any{"name": " J "}, want: map[string]Kind{"name": KindTooShort}},
		{name: "out of range", data: map[string]any{"name": "Jane", "age": 131}, want: map[string]Kind{"age": KindOutOfRange}},
		{name: "not an integer", data: map[string]any{"name": "Jane", "age": 3.5}, want: map[string]Kind{"age": KindNotAnInteger}},
		{name: "numeric string accepted", data: map[string]any{"name": "Jane", "age": "42"}},
		{name: "not in enum", data: map[string]any{"name": "Jane", "role": "owner"}, want: map[string]Kind{"role": KindNotInEnum}},
		{name: "item type", data: map[string]any{"name": "Jane", "tags": []any{"ok", 3}}, want: map[string]Kind{"tags.1": KindTypeMismatch}},
		{name: "optional empty skipped", data: map[string]any{"name": "Jane", "age": "", "role": nil}},
		{
			name: "all collected",
			data: map[string]any{"age": -1, "role": "x"},
			want: map[string]Kind{"name": KindMissingRequiredField, "age": KindOutOfRange, "role": KindNotInEnum},
		},
	}
	schema := profileSchema()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(schema, tc.data)
			got := map[string]Kind{}
			for path, issue := range result.Errors {
				got[path] = issue.Kind
			}
			want := tc.want
			if want == nil {
				want = map[string]Kind{}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("issues mismatch (-want +got):\n%s", diff)
			}
			if result.Valid != (len(want) == 0) {
				t.Fatalf("valid = %v with %d issues", result.Valid, len(want))
			}
		})
	}
}

func TestValidate_NestedPaths(t *testing.T) {
	author := jsonschema.NewObjectType().
		AddStringProperty("email", "Email", true, "", jsonschema.Schema{Pattern: `^[^@]+@[^@]+$`}).
		Schema()
	props := jsonschema.NewProperties()
	props.Set("author", author)
	schema := jsonschema.NewObjectTypeFrom(props, []string{"author"}).Schema()

	result := Validate(schema, map[string]any{"author": map[string]any{"email": "nobody"}})
	if got := result.Kind("author.email"); got != KindPatternMismatch {
		t.Fatalf("expected PatternMismatch at author.email, got %q (%v)", got, result.Errors)
	}
	if got := result.Errors["author.email"].Pointer(); got != "/author/email" {
		t.Fatalf("unexpected pointer %q", got)
	}
}

func TestValidate_SchemaErrors(t *testing.T) {
	props := jsonschema.NewProperties()
	props.Set("code", jsonschema.Schema{Type: jsonschema.TypeString, Pattern: "("})
	props.Set("span", jsonschema.Schema{Type: jsonschema.TypeNumber, Minimum: jsonschema.Float(9), Maximum: jsonschema.Float(1)})
	schema := jsonschema.Schema{
		Type:       jsonschema.TypeObject,
		Properties: props,
		Required:   []string{"code", "ghost"},
	}

	result := Validate(schema, map[string]any{"code": "abc", "span": 3})
	want := map[string]Kind{
		"code":  KindSchemaError,
		"span":  KindSchemaError,
		"ghost": KindSchemaError,
	}
	got := map[string]Kind{}
	for path, issue := range result.Errors {
		got[path] = issue.Kind
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_UnsatisfiableConstraintsFailClosed(t *testing.T) {
	schema, err := jsonschema.Decode([]byte(`{
		"type": "object",
		"required": ["a"],
		"properties": {
			"a": {"type": "string", "enum": []},
			"n": {"type": "number", "exclusiveMinimum": 5, "exclusiveMaximum": 5},
			"lo": {"type": "number", "minimum": 5, "exclusiveMaximum": 5},
			"hi": {"type": "number", "exclusiveMinimum": 5, "maximum": 5}
		}
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	result := Validate(schema, map[string]any{"a": "anything", "n": 5, "lo": 5, "hi": 5})
	want := map[string]Kind{
		"a":  KindSchemaError,
		"n":  KindSchemaError,
		"lo": KindSchemaError,
		"hi": KindSchemaError,
	}
	got := map[string]Kind{}
	for path, issue := range result.Errors {
		got[path] = issue.Kind
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_SatisfiableExclusiveBounds(t *testing.T) {
	props := jsonschema.NewProperties()
	props.Set("n", jsonschema.Schema{Type: jsonschema.TypeNumber, ExclusiveMinimum: jsonschema.Float(1), ExclusiveMaximum: jsonschema.Float(2)})
	schema := jsonschema.Schema{Type: jsonschema.TypeObject, Properties: props}

	if result := Validate(schema, map[string]any{"n": 1.5}); len(result.Errors) != 0 {
		t.Fatalf("unexpected issues: %v", result.Errors)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	schema := profileSchema()
	data := map[string]any{"name": "  Jane  ", "tags": []any{"a"}}
	before := map[string]any{"name": "  Jane  ", "tags": []any{"a"}}
	Validate(schema, data)
	if diff := cmp.Diff(before, data); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestValidate_LengthAndItemBounds(t *testing.T) {
	props := jsonschema.NewProperties()
	props.Set("code", jsonschema.Schema{Type: jsonschema.TypeString, MaxLength: jsonschema.Int(3)})
	props.Set("picks", jsonschema.Schema{Type: jsonschema.TypeArray, MinItems: jsonschema.Int(2), MaxItems: jsonschema.Int(3)})
	props.Set("ratio", jsonschema.Schema{Type: jsonschema.TypeNumber, ExclusiveMaximum: jsonschema.Float(1)})
	schema := jsonschema.Schema{Type: jsonschema.TypeObject, Properties: props}

	result := Validate(schema, map[string]any{"code": "abcd", "picks": []string{"x"}, "ratio": 1})
	want := map[string]Kind{"code": KindTooLong, "picks": KindTooFewItems, "ratio": KindOutOfRange}
	for path, kind := range want {
		if got := result.Kind(path); got != kind {
			t.Fatalf("%s: expected %s, got %q", path, kind, got)
		}
	}

	result = Validate(schema, map[string]any{"picks": []int{1, 2, 3, 4}})
	if got := result.Kind("picks"); got != KindTooManyItems {
		t.Fatalf("expected TooManyItems, got %q", got)
	}
}

func TestResult_ErrSummarisesIssues(t *testing.T) {
	result := Validate(profileSchema(), map[string]any{"age": 400, "role": "x", "tags": "nope"})
	err := result.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "OutOfRange at age") {
		t.Fatalf("issues not sorted by path: %s", msg)
	}
	if !strings.Contains(msg, "(total 4)") {
		t.Fatalf("expected total marker: %s", msg)
	}
	if len(result.Messages()["name"]) != 1 {
		t.Fatalf("expected message for name: %v", result.Messages())
	}
}

func TestValidateProperty(t *testing.T) {
	v := New()
	schema := profileSchema()
	if issue := v.ValidateProperty(schema, "name", "Jane"); issue != nil {
		t.Fatalf("unexpected issue: %+v", issue)
	}
	issue := v.ValidateProperty(schema, "name", "J")
	if issue == nil || issue.Kind != KindTooShort {
		t.Fatalf("expected TooShort, got %+v", issue)
	}
	if issue := v.ValidateProperty(schema, "age", ""); issue != nil {
		t.Fatalf("optional empty answer should pass: %+v", issue)
	}
	if issue := v.ValidateProperty(schema, "unknown", "x"); issue == nil || issue.Kind != KindSchemaError {
		t.Fatalf("expected SchemaError for undeclared property, got %+v", issue)
	}
}
