package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/labels"
	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

var (
	schemaData     string
	schemaOptional bool
)

// schemaCmd drafts a schema from a sample value tree.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Draft a schema from a sample value tree",
	Long: `Builds an object schema whose properties follow the sample's keys.
Non-empty string samples become required with a minimum length taken from
required_min_length in the config file.

Example:
  dynform schema --data profile.json > profile.schema.json`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaData, "data", "", "sample value tree (JSON or YAML)")
	schemaCmd.Flags().BoolVar(&schemaOptional, "optional", false, "mark every property optional")
}

func runSchema(cmd *cobra.Command, args []string) error {
	sample, err := loadObject(cmd.Context(), schemaData)
	if err != nil {
		return err
	}
	if sample == nil {
		return fmt.Errorf("--data is required")
	}
	return writeJSON(cmd.OutOrStdout(), draftSchema(sample, cfg.RequiredMinLength, !schemaOptional))
}

func draftSchema(sample map[string]any, minLength int, required bool) jsonschema.Schema {
	builder := jsonschema.PropertyBuilder{RequiredMinLength: minLength}
	names := make([]string, 0, len(sample))
	for name := range sample {
		names = append(names, name)
	}
	sort.Strings(names)

	props := jsonschema.NewProperties()
	var requiredNames []string
	for _, name := range names {
		label := labels.Humanize(name)
		value := sample[name]
		switch typed := value.(type) {
		case string:
			req := required && typed != ""
			props.Set(name, builder.String(label, req, ""))
			if req {
				requiredNames = append(requiredNames, name)
			}
		case bool:
			props.Set(name, jsonschema.Schema{Type: jsonschema.TypeBoolean, Title: label})
		case map[string]any:
			nested := draftSchema(typed, minLength, required)
			nested.Title = label
			props.Set(name, nested)
		default:
			if n, ok := values.Number(value); ok {
				if n == math.Trunc(n) {
					props.Set(name, builder.Integer(label, false, ""))
				} else {
					props.Set(name, jsonschema.Schema{Type: jsonschema.TypeNumber, Title: label})
				}
				continue
			}
			if items, ok := values.Slice(value); ok {
				props.Set(name, builder.Array(label, false, "", itemType(items)))
				continue
			}
			props.Set(name, jsonschema.Schema{Title: label})
		}
	}
	return jsonschema.NewObjectTypeFrom(props, requiredNames).Schema()
}

func itemType(items []any) jsonschema.Type {
	if len(items) == 0 {
		return jsonschema.TypeString
	}
	switch items[0].(type) {
	case bool:
		return jsonschema.TypeBoolean
	case map[string]any:
		return jsonschema.TypeObject
	}
	if n, ok := values.Number(items[0]); ok {
		if _, isString := items[0].(string); !isString {
			if n == math.Trunc(n) {
				return jsonschema.TypeInteger
			}
			return jsonschema.TypeNumber
		}
	}
	return jsonschema.TypeString
}
