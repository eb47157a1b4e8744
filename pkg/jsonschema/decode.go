package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/internal/jsonschema/loader"
)

// Decode parses a JSON schema document.
func Decode(data []byte) (Schema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Schema{}, errors.New("jsonschema: document is empty")
	}
	var schema Schema
	if err := json.Unmarshal(trimmed, &schema); err != nil {
		return Schema{}, fmt.Errorf("jsonschema: decode: %w", err)
	}
	return schema, nil
}

// DecodeYAML parses a YAML schema document. Mapping order is preserved so
// properties keep their declaration order.
func DecodeYAML(data []byte) (Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Schema{}, fmt.Errorf("jsonschema: decode yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, &root); err != nil {
		return Schema{}, fmt.Errorf("jsonschema: decode yaml: %w", err)
	}
	return Decode(buf.Bytes())
}

// DecodeValue parses a JSON or YAML data document into a generic value tree
// suitable for validation. YAML is detected when the payload does not start
// with '{' or '['.
func DecodeValue(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		var root yaml.Node
		if err := yaml.Unmarshal(trimmed, &root); err != nil {
			return nil, fmt.Errorf("jsonschema: decode value: %w", err)
		}
		var buf bytes.Buffer
		if err := writeYAMLNode(&buf, &root); err != nil {
			return nil, fmt.Errorf("jsonschema: decode value: %w", err)
		}
		trimmed = buf.Bytes()
	}
	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("jsonschema: decode value: %w", err)
	}
	return out, nil
}

// LoadFile reads and decodes a schema from disk, picking the decoder from the
// file extension.
func LoadFile(ctx context.Context, path string) (Schema, error) {
	data, err := loader.ReadFile(ctx, path)
	if err != nil {
		return Schema{}, err
	}
	return decodeByName(path, data)
}

// LoadFS reads and decodes a schema from an fs.FS.
func LoadFS(ctx context.Context, files fs.FS, name string) (Schema, error) {
	data, err := loader.ReadFS(ctx, files, name)
	if err != nil {
		return Schema{}, err
	}
	return decodeByName(name, data)
}

func decodeByName(name string, data []byte) (Schema, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

func writeYAMLNode(buf *bytes.Buffer, node *yaml.Node) error {
	if node == nil {
		buf.WriteString("null")
		return nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeYAMLNode(buf, node.Content[0])
	case yaml.AliasNode:
		return writeYAMLNode(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			if idx > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[idx].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeYAMLNode(buf, node.Content[idx+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for idx, child := range node.Content {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLNode(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	default:
		return fmt.Errorf("unsupported yaml node kind %d", node.Kind)
	}
}
