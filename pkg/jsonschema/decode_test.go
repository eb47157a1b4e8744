package jsonschema

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

const formSchemaJSON = `{
  "type": "object",
  "properties": {
    "required_string": {"title": "string", "type": "string", "default": "default string", "minLength": 4},
    "not_required_string": {"type": "string", "examples": ["type string"], "pattern": "^[0-9\\-]{1,5}$"},
    "required_number": {"type": "number", "minimum": 1, "maximum": 3, "default": 1},
    "required_integer": {"type": "integer", "minimum": 0, "maximum": 5, "x-widget": "slider"}
  },
  "required": ["required_string", "required_number", "required_integer"]
}`

func TestDecode_PreservesPropertyOrder(t *testing.T) {
	schema, err := Decode([]byte(formSchemaJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"required_string", "not_required_string", "required_number", "required_integer"}
	if diff := cmp.Diff(want, schema.Properties.Keys()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	integer, _ := schema.Properties.Get("required_integer")
	if integer.Extensions["x-widget"] != "slider" {
		t.Fatalf("extension not captured: %#v", integer.Extensions)
	}
	if integer.Maximum == nil || *integer.Maximum != 5 {
		t.Fatalf("maximum not decoded: %v", integer.Maximum)
	}
}

func TestDecode_RoundTripKeepsOrder(t *testing.T) {
	schema, err := Decode([]byte(formSchemaJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := string(encoded)
	first := strings.Index(text, `"required_string"`)
	last := strings.Index(text, `"required_integer"`)
	if first < 0 || last < 0 || first > last {
		t.Fatalf("encoded order lost: %s", text)
	}
	if !strings.Contains(text, `"x-widget":"slider"`) {
		t.Fatalf("extension not re-emitted: %s", text)
	}
}

func TestDecodeYAML_PreservesOrder(t *testing.T) {
	doc := `
type: object
properties:
  zeta:
    type: string
  alpha:
    type: integer
    minimum: 1
required: [zeta]
`
	schema, err := DecodeYAML([]byte(doc))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, schema.Properties.Keys()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	alpha, _ := schema.Properties.Get("alpha")
	if alpha.Minimum == nil || *alpha.Minimum != 1 {
		t.Fatalf("minimum not decoded: %v", alpha.Minimum)
	}
}

func TestDecode_Empty(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestLoadFS_PicksDecoderByExtension(t *testing.T) {
	files := fstest.MapFS{
		"form.yaml": {Data: []byte("type: object\nproperties:\n  name:\n    type: string\n")},
		"form.json": {Data: []byte(`{"type":"object","properties":{"name":{"type":"string"}}}`)},
	}
	for _, name := range []string{"form.yaml", "form.json"} {
		schema, err := LoadFS(context.Background(), files, name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if !schema.Properties.Has("name") {
			t.Fatalf("%s: expected name property", name)
		}
	}
}

func TestDecodeValue_YAMLAndJSON(t *testing.T) {
	fromJSON, err := DecodeValue([]byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("decode json value: %v", err)
	}
	fromYAML, err := DecodeValue([]byte("a: 1\n"))
	if err != nil {
		t.Fatalf("decode yaml value: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("json and yaml values differ (-json +yaml):\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name    string
		schema  Schema
		wantErr bool
	}{
		{name: "valid", schema: Schema{Type: TypeString, MinLength: Int(1)}},
		{name: "unknown type", schema: Schema{Type: "geo"}, wantErr: true},
		{name: "negative length", schema: Schema{Type: TypeString, MinLength: Int(-1)}, wantErr: true},
		{name: "inverted range", schema: Schema{Type: TypeNumber, Minimum: Float(5), Maximum: Float(1)}, wantErr: true},
		{name: "bad pattern", schema: Schema{Type: TypeString, Pattern: "("}, wantErr: true},
		{name: "items on string", schema: Schema{Type: TypeString, Items: &Schema{}}, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schema.Check()
			if (err != nil) != tc.wantErr {
				t.Fatalf("check error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
