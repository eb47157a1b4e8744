package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/values"
	"github.com/goliatone/go-dynform/pkg/dynamic/field"
	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/query"
)

var (
	querySchema string
	queryData   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Parse and apply search queries",
}

var queryParseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Parse query text into query items",
	Long: `Parses each argument as "key:<op>value". With --schema, keys take their
data type and allowed operators from the schema properties.

Example:
  dynform query parse --schema host.yaml "cpu:>=4" "name:~web"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueryParse,
}

var queryMatchCmd = &cobra.Command{
	Use:   "match [text...]",
	Short: "Filter a list of records with query items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQueryMatch,
}

func init() {
	queryCmd.PersistentFlags().StringVar(&querySchema, "schema", "", "schema describing the record keys")
	queryMatchCmd.Flags().StringVar(&queryData, "data", "", "file holding a list of records")
}

func runQueryParse(cmd *cobra.Command, args []string) error {
	items, err := parseQueries(cmd.Context(), args)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), items)
}

func runQueryMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	items, err := parseQueries(ctx, args)
	if err != nil {
		return err
	}
	data, err := loadValue(ctx, queryData)
	if err != nil {
		return err
	}
	records, ok := values.Slice(data)
	if !ok {
		return fmt.Errorf("--data must hold a list of records")
	}
	matched := make([]any, 0, len(records))
	for _, record := range records {
		if query.MatchAll(record, items) {
			matched = append(matched, record)
		}
	}
	return writeJSON(cmd.OutOrStdout(), matched)
}

func parseQueries(ctx context.Context, args []string) ([]query.QueryItem, error) {
	var known []query.KeyItem
	if querySchema != "" {
		schema, err := loadSchema(ctx, querySchema)
		if err != nil {
			return nil, err
		}
		known = layout.KeyItems(field.NewInferrer().Fields(schema))
	}
	items := make([]query.QueryItem, 0, len(args))
	for _, arg := range args {
		item, err := query.ParseText(arg, known...)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
