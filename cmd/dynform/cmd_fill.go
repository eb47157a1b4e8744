package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/prompt"
	"github.com/goliatone/go-dynform/pkg/validation"
)

var (
	fillSchema   string
	fillData     string
	fillOutput   string
	fillAttempts int
)

// fillCmd prompts for every property of a schema.
var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill a value tree interactively",
	Long: `Asks for every property in declaration order. Values from --data become
the prompt defaults; answers are validated before moving on.

Example:
  dynform fill --schema profile.yaml -o profile.json`,
	RunE: runFill,
}

func init() {
	fillCmd.Flags().StringVar(&fillSchema, "schema", "", "schema file (JSON or YAML)")
	fillCmd.Flags().StringVar(&fillData, "data", "", "prefill value tree")
	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "", "output file (stdout if empty)")
	fillCmd.Flags().IntVar(&fillAttempts, "attempts", prompt.DefaultMaxAttempts, "attempts per property")
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	schema, err := loadSchema(ctx, fillSchema)
	if err != nil {
		return err
	}
	prefill, err := loadObject(ctx, fillData)
	if err != nil {
		return err
	}

	filler := prompt.New(
		prompt.WithPromptDriver(prompt.NewSurveyDriver(cmd.ErrOrStderr())),
		prompt.WithValidator(validation.New(validation.WithLogger(logger))),
		prompt.WithInferrer(field.NewInferrer()),
		prompt.WithMaxAttempts(fillAttempts),
		prompt.WithLogger(logger),
	)
	values, err := filler.Fill(ctx, schema, prefill)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(fillOutput, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()
	return writeJSON(out, values)
}
