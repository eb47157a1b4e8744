package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/internal/jsonschema/loader"
	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

func loadSchema(ctx context.Context, path string) (jsonschema.Schema, error) {
	if strings.TrimSpace(path) == "" {
		return jsonschema.Schema{}, fmt.Errorf("--schema is required")
	}
	return jsonschema.LoadFile(ctx, path)
}

// loadValue reads a JSON or YAML value tree. An empty path yields nil.
func loadValue(ctx context.Context, path string) (any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := loader.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return jsonschema.DecodeValue(data)
}

func loadObject(ctx context.Context, path string) (map[string]any, error) {
	value, err := loadValue(ctx, path)
	if err != nil || value == nil {
		return nil, err
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an object, got %T", path, value)
	}
	return object, nil
}

// resolveLayout reads a layout document, or builds one from a kind name
// when the flag is not a file.
func resolveLayout(ctx context.Context, flag string) (*layout.Layout, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		flag = cfg.Layout
	}
	if flag == "" {
		return nil, nil
	}
	if kind := layout.Kind(flag); kind.Known() {
		return &layout.Layout{Type: kind}, nil
	}
	data, err := loader.ReadFile(ctx, flag)
	if err != nil {
		return nil, err
	}
	var l layout.Layout
	switch strings.ToLower(filepath.Ext(flag)) {
	case ".yaml", ".yml":
		l, err = layout.DecodeYAML(data)
	default:
		l, err = layout.Decode(data)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func writeJSON(w io.Writer, value any) error {
	payload, err := json.MarshalIndentWithOption(value, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

func openOutput(path string, fallback io.Writer) (io.Writer, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
