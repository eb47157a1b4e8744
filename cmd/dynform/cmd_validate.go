package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/validation"
)

var (
	validateSchema string
	validateData   string
	validateJSON   bool
)

// validateCmd checks a value tree and exits non-zero when it is invalid.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a value tree against a schema",
	Long: `Validates every declared property and prints one issue per failing path.

Example:
  dynform validate --schema profile.yaml --data profile.json`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "schema file (JSON or YAML)")
	validateCmd.Flags().StringVar(&validateData, "data", "", "value tree file (JSON or YAML)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the result as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	schema, err := loadSchema(ctx, validateSchema)
	if err != nil {
		return err
	}
	data, err := loadValue(ctx, validateData)
	if err != nil {
		return err
	}

	result := validation.New(validation.WithLogger(logger)).Validate(schema, data)
	logger.Debug("validated", zap.String("schema", validateSchema), zap.Bool("valid", result.Valid))

	out := cmd.OutOrStdout()
	if validateJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		for _, issue := range result.Issues() {
			fmt.Fprintf(out, "%s: %s: %s\n", issue.Path, issue.Kind, issue.Message)
		}
		if result.Valid {
			fmt.Fprintln(out, "valid")
		}
	}
	if !result.Valid {
		return fmt.Errorf("%d invalid field(s)", len(result.Errors))
	}
	return nil
}
