package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	defaults     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.defaults = append(s.defaults, cfg.Default)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

const ticketSchema = `{
  "type": "object",
  "required": ["title", "count"],
  "properties": {
    "title": {"type": "string", "minLength": 2},
    "status": {"type": "string", "enum": ["draft", "published"]},
    "count": {"type": "integer", "minimum": 0},
    "public": {"type": "boolean"},
    "labels": {"type": "array", "items": {"type": "string", "enum": ["a", "b", "c"]}},
    "notes": {"type": "string", "format": "markdown"},
    "secret": {"type": "string", "format": "password"},
    "owner": {"type": "object", "properties": {"email": {"type": "string"}}}
  }
}`

func mustSchema(t *testing.T, raw string) jsonschema.Schema {
	t.Helper()
	schema, err := jsonschema.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	return schema
}

func TestFill_EveryPromptKind(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"hello", "3", "ops@example.com"},
		selectIdx: []int{1},
		confirm:   []bool{true},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{"# notes"},
		passwords: []string{"hunter2"},
	}
	filler := New(WithPromptDriver(driver))

	got, err := filler.Fill(context.Background(), mustSchema(t, ticketSchema), nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]any{
		"title":  "hello",
		"status": "published",
		"count":  int64(3),
		"public": true,
		"labels": []any{"a", "c"},
		"notes":  "# notes",
		"secret": "hunter2",
		"owner":  map[string]any{"email": "ops@example.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("unexpected messages: %v", driver.infoMessages)
	}
}

func TestFill_RepromptsInvalidAnswers(t *testing.T) {
	schema := mustSchema(t, `{
	  "type": "object",
	  "required": ["count"],
	  "properties": {"count": {"type": "integer", "minimum": 0}}
	}`)
	driver := &stubDriver{inputs: []string{"-1", "abc", "10"}}
	filler := New(WithPromptDriver(driver))

	got, err := filler.Fill(context.Background(), schema, nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"count": int64(10)}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected two rejections, got %v", driver.infoMessages)
	}
	if !strings.HasPrefix(driver.infoMessages[0], "Invalid count: ") {
		t.Fatalf("unexpected message %q", driver.infoMessages[0])
	}
}

func TestFill_TooManyAttempts(t *testing.T) {
	schema := mustSchema(t, `{
	  "type": "object",
	  "required": ["title"],
	  "properties": {"title": {"type": "string"}}
	}`)
	driver := &stubDriver{inputs: []string{"", " "}}
	filler := New(WithPromptDriver(driver), WithMaxAttempts(2))

	_, err := filler.Fill(context.Background(), schema, nil)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFill_PrefillSeedsDefaultsAndOptionalEmptyIsOmitted(t *testing.T) {
	schema := mustSchema(t, `{
	  "type": "object",
	  "properties": {
	    "name": {"type": "string"},
	    "nick": {"type": "string"},
	    "tags": {"type": "array", "items": {"type": "integer"}}
	  }
	}`)
	driver := &stubDriver{inputs: []string{"Ada", "", "1, 2"}}
	filler := New(WithPromptDriver(driver))

	prefill := map[string]any{"name": "Ada", "nick": "ada"}
	got, err := filler.Fill(context.Background(), schema, prefill)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]any{"name": "Ada", "tags": []any{int64(1), int64(2)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ada", "ada", ""}, driver.defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if prefill["nick"] != "ada" {
		t.Fatalf("prefill mutated: %v", prefill)
	}
}

func TestFill_RejectsNonObjectSchema(t *testing.T) {
	filler := New(WithPromptDriver(&stubDriver{}))
	_, err := filler.Fill(context.Background(), jsonschema.Schema{Type: jsonschema.TypeString}, nil)
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestFill_DriverAbort(t *testing.T) {
	schema := mustSchema(t, `{"type": "object", "properties": {"title": {"type": "string"}}}`)
	_, err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), schema, nil)
	if err == nil {
		t.Fatalf("expected driver error to surface")
	}
}
