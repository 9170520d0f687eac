package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/reso"
)

var (
	batchSize int
	maxPages  int
)

// replicateCmd represents the replicate command
var replicateCmd = &cobra.Command{
	Use:   "replicate <resource>",
	Short: "Bulk-download a resource through the replication endpoint",
	Long: `Download every matching record from a resource's replication endpoint,
following the server's cursor until it is exhausted. Records are written
as NDJSON, one record per line, so output can be piped or resumed with
line-oriented tools.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplicate,
}

func init() {
	rootCmd.AddCommand(replicateCmd)

	replicateCmd.Flags().StringVarP(&serverFilter, "filter", "f", "", "OData $filter expression")
	replicateCmd.Flags().StringSliceVar(&selectFields, "select", nil, "fields to request ($select)")
	replicateCmd.Flags().IntVar(&batchSize, "batch-size", reso.MaxReplicationTop, "records per page ($top, max 2000)")
	replicateCmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 means no limit)")
	replicateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write NDJSON to a file instead of stdout")
}

func runReplicate(cmd *cobra.Command, args []string) error {
	builder := reso.NewReplicationQueryBuilder(args[0])
	if serverFilter != "" {
		builder.Filter(serverFilter)
	}
	if len(selectFields) > 0 {
		builder.Select(selectFields...)
	}
	if batchSize > 0 {
		builder.Top(batchSize)
	}

	query, err := builder.Build()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(client.BuildURL(query.ToODataString()))
		return nil
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx := context.Background()
	encoder := json.NewEncoder(out)
	start := time.Now()
	pages := 0
	total := 0

	resp, err := client.ExecuteReplication(ctx, query)
	if err != nil {
		return err
	}

	for {
		pages++
		total += resp.RecordCount

		for _, record := range resp.Records {
			if err := encoder.Encode(record); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}

		logger.Debug().
			Int("page", pages).
			Int("records", resp.RecordCount).
			Bool("more", resp.HasMore()).
			Msg("Replication page written")

		if !resp.HasMore() {
			break
		}
		if maxPages > 0 && pages >= maxPages {
			logger.Info().Int("pages", pages).Msg("Reached max pages, stopping before cursor exhaustion")
			break
		}

		resp, err = client.ExecuteNextLink(ctx, resp.NextLink)
		if err != nil {
			return fmt.Errorf("replication aborted after %d pages (%d records): %w", pages, total, err)
		}
	}

	logger.Info().
		Int("pages", pages).
		Int("records", total).
		Dur("elapsed", time.Since(start)).
		Msg("Replication complete")
	return nil
}
