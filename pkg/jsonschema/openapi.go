package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI loads an OpenAPI 3 document and converts the named
// components.schemas entry into a Schema. References are resolved by the
// kin-openapi loader; external references are not followed.
func FromOpenAPI(ctx context.Context, data []byte, name string) (Schema, error) {
	if err := ctx.Err(); err != nil {
		return Schema{}, err
	}
	if len(data) == 0 {
		return Schema{}, errors.New("jsonschema openapi: document payload is empty")
	}
	if strings.TrimSpace(name) == "" {
		return Schema{}, errors.New("jsonschema openapi: schema name is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return Schema{}, fmt.Errorf("jsonschema openapi: load document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return Schema{}, errors.New("jsonschema openapi: document declares no component schemas")
	}
	ref, ok := spec.Components.Schemas[name]
	if !ok || ref == nil {
		return Schema{}, fmt.Errorf("jsonschema openapi: schema %q not found", name)
	}
	return convertOpenAPISchema(ref), nil
}

// OpenAPISchemaNames lists the component schema names declared by an OpenAPI
// document, sorted for stable CLI output.
func OpenAPISchemaNames(ctx context.Context, data []byte) ([]string, error) {
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("jsonschema openapi: load document: %w", err)
	}
	if spec.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func convertOpenAPISchema(ref *openapi3.SchemaRef) Schema {
	if ref == nil || ref.Value == nil {
		return Schema{}
	}
	src := ref.Value
	schema := Schema{
		Type:        Type(firstSchemaType(src.Type)),
		Title:       src.Title,
		Description: src.Description,
		Format:      src.Format,
		Default:     src.Default,
		Pattern:     src.Pattern,
	}
	if src.Example != nil {
		schema.Examples = []any{src.Example}
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Properties) > 0 {
		// OpenAPI maps carry no order; sort names so output is deterministic.
		names := make([]string, 0, len(src.Properties))
		for name := range src.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		schema.Properties = NewProperties()
		for _, name := range names {
			schema.Properties.Set(name, convertOpenAPISchema(src.Properties[name]))
		}
	}
	if src.Items != nil {
		items := convertOpenAPISchema(src.Items)
		schema.Items = &items
	}
	if src.Min != nil {
		value := *src.Min
		if src.ExclusiveMin {
			schema.ExclusiveMinimum = &value
		} else {
			schema.Minimum = &value
		}
	}
	if src.Max != nil {
		value := *src.Max
		if src.ExclusiveMax {
			schema.ExclusiveMaximum = &value
		} else {
			schema.Maximum = &value
		}
	}
	if src.MinLength != 0 {
		schema.MinLength = Int(int(src.MinLength))
	}
	if src.MaxLength != nil {
		schema.MaxLength = Int(int(*src.MaxLength))
	}
	if src.MinItems != 0 {
		schema.MinItems = Int(int(src.MinItems))
	}
	if src.MaxItems != nil {
		schema.MaxItems = Int(int(*src.MaxItems))
	}
	for key, value := range src.Extensions {
		if !strings.HasPrefix(key, extensionPrefix) {
			continue
		}
		if schema.Extensions == nil {
			schema.Extensions = make(map[string]any)
		}
		schema.Extensions[key] = value
	}
	return schema
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}
