package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/filter"
	"github.com/jeremeybingham/reso-client/reso"
)

var (
	queryOrderBy string
	queryTop     int
	querySkip    int
	queryCount   bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <resource>",
	Short: "Query records from a resource",
	Long: `Query records from a RESO resource such as Property, Member, or Office.

Server-side filtering uses OData $filter syntax via --filter. Client-side
post-filtering with expression syntax is available via --where or a named
--preset from the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&serverFilter, "filter", "f", "", "OData $filter expression (server-side)")
	queryCmd.Flags().StringSliceVar(&selectFields, "select", nil, "fields to request ($select)")
	queryCmd.Flags().StringSliceVar(&expandFields, "expand", nil, "navigation fields to embed ($expand)")
	queryCmd.Flags().StringVar(&queryOrderBy, "orderby", "", "sort order, e.g. 'ListPrice desc'")
	queryCmd.Flags().IntVar(&queryTop, "top", 0, "maximum number of records ($top)")
	queryCmd.Flags().IntVar(&querySkip, "skip", 0, "number of records to skip ($skip)")
	queryCmd.Flags().BoolVar(&queryCount, "count", false, "request the total match count ($count=true)")
	queryCmd.Flags().StringVarP(&whereExpr, "where", "w", "", "client-side filter expression")
	queryCmd.Flags().StringVarP(&presetName, "preset", "p", "", "client-side filter preset from config")
	queryCmd.Flags().StringVar(&outputFormat, "format", "", "output format: table, json, or ndjson (default from config)")
	queryCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to a file instead of stdout")
}

func runQuery(cmd *cobra.Command, args []string) error {
	builder := reso.NewQueryBuilder(args[0])
	if serverFilter != "" {
		builder.Filter(serverFilter)
	}
	if len(selectFields) > 0 {
		builder.Select(selectFields...)
	}
	if len(expandFields) > 0 {
		builder.Expand(expandFields...)
	}
	if queryOrderBy != "" {
		field, direction := splitOrderBy(queryOrderBy)
		builder.OrderBy(field, direction)
	}
	if queryTop > 0 {
		builder.Top(queryTop)
	}
	if querySkip > 0 {
		builder.Skip(querySkip)
	}
	if queryCount {
		builder.WithCount()
	}

	query, err := builder.Build()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(client.BuildURL(query.ToODataString()))
		return nil
	}

	ctx := context.Background()
	resp, err := client.Execute(ctx, query)
	if err != nil {
		return err
	}

	if resp.Count != nil {
		logger.Info().Int64("total", *resp.Count).Int("returned", len(resp.Value)).Msg("Server reported total match count")
	}

	records, err := applyClientFilter(ctx, resp.Value)
	if err != nil {
		return err
	}

	return writeRecords(records, selectFields)
}

// splitOrderBy separates "Field direction" input; a bare field name
// defaults to ascending.
func splitOrderBy(s string) (string, string) {
	parts := strings.Fields(s)
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return strings.TrimSpace(s), "asc"
}

// resolveClientFilter determines the client-side filter expression to use.
// Priority: command line expression > preset > config default. Empty means
// no client-side filtering.
func resolveClientFilter() (string, error) {
	if whereExpr != "" {
		return whereExpr, nil
	}

	if presetName != "" {
		if expr, ok := cfg.Filter.Presets[presetName]; ok {
			return expr, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", presetName)
	}

	if cfg.Filter.Default != "" {
		return cfg.Filter.Presets[cfg.Filter.Default], nil
	}

	return "", nil
}

// applyClientFilter post-filters fetched records with the resolved
// expression, if any.
func applyClientFilter(ctx context.Context, records []reso.Record) ([]reso.Record, error) {
	expression, err := resolveClientFilter()
	if err != nil {
		return nil, err
	}
	if expression == "" {
		return records, nil
	}

	compiled, err := filterCompiler().Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	matched, err := filter.NewConcurrentEvaluator().Evaluate(ctx, compiled, records)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("in", len(records)).
		Int("out", len(matched)).
		Str("expression", expression).
		Msg("Applied client-side filter")

	return matched, nil
}

var compiler filter.CachingCompiler

// filterCompiler returns the process-wide expression compiler, sized from
// config on first use.
func filterCompiler() filter.CachingCompiler {
	if compiler == nil {
		compiler = filter.NewExprCompiler(filter.WithCache(cfg.Filter.CacheSize))
	}
	return compiler
}
