package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/dynamic/chart"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/render/html"
)

var (
	renderSchema     string
	renderData       string
	renderLayout     string
	renderFormat     string
	renderOutput     string
	renderShowErrors bool
	renderTheme      string
	renderVariant    string
	renderPage       int
)

// renderCmd composes a form and prints it as JSON or HTML.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compose a form from a schema and value tree",
	Long: `Merges schema defaults into the data, validates it, resolves every field
and arranges the result with a layout.

--layout accepts a layout kind (item, table, raw, ...) or a layout file.

Example:
  dynform render --schema profile.yaml --data profile.json --format html`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderSchema, "schema", "", "schema file (JSON or YAML)")
	renderCmd.Flags().StringVar(&renderData, "data", "", "value tree file (JSON or YAML)")
	renderCmd.Flags().StringVar(&renderLayout, "layout", "", "layout kind or layout file")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "output format: json or html")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
	renderCmd.Flags().BoolVar(&renderShowErrors, "show-errors", false, "attach validation issues to fields")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "theme manifest name")
	renderCmd.Flags().StringVar(&renderVariant, "variant", "", "theme variant")
	renderCmd.Flags().IntVar(&renderPage, "page", 0, "table page (1-based)")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format := strings.ToLower(strings.TrimSpace(renderFormat))
	if format != "json" && format != "html" {
		return fmt.Errorf("unsupported format %q", renderFormat)
	}

	schema, err := loadSchema(ctx, renderSchema)
	if err != nil {
		return err
	}
	data, err := loadObject(ctx, renderData)
	if err != nil {
		return err
	}
	l, err := resolveLayout(ctx, renderLayout)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	registry := field.NewRegistry(field.WithLogger(logger), field.WithTimezone(loc))
	composer := form.New(form.WithRegistry(registry), form.WithLogger(logger))
	result, composeErr := composer.Compose(ctx, form.Request{
		Schema:               schema,
		Data:                 data,
		Layout:               l,
		State:                layout.State{Page: renderPage},
		ShowValidationErrors: renderShowErrors,
	})
	if composeErr != nil {
		logger.Warn("compose failed", zap.Error(composeErr))
		if result.Values == nil {
			return composeErr
		}
	}

	out, closeOut, err := openOutput(renderOutput, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	if format == "json" {
		return writeJSON(out, result)
	}

	themeName, variant := firstNonEmpty(renderTheme, cfg.Theme), firstNonEmpty(renderVariant, cfg.ThemeVariant)
	renderer, err := html.New(
		html.WithThemeSelection(chart.NewSelector(), themeName, variant),
		html.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	body, err := renderer.RenderForm(result)
	if err != nil {
		return err
	}
	page, err := renderer.Page(body)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, page)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
