package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/reso"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <resource> <key>",
	Short: "Fetch a single record by its key",
	Long: `Fetch one record by primary key, e.g. a listing by its ListingKey:

  reso get Property 20060412165917817933000000`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringSliceVar(&selectFields, "select", nil, "fields to request ($select)")
	getCmd.Flags().StringSliceVar(&expandFields, "expand", nil, "navigation fields to embed ($expand)")
	getCmd.Flags().StringVar(&outputFormat, "format", "", "output format: table, json, or ndjson (default from config)")
	getCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to a file instead of stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	builder := reso.ByKey(args[0], args[1])
	if len(selectFields) > 0 {
		builder.Select(selectFields...)
	}
	if len(expandFields) > 0 {
		builder.Expand(expandFields...)
	}

	query, err := builder.Build()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(client.BuildURL(query.ToODataString()))
		return nil
	}

	record, err := client.ExecuteByKey(context.Background(), query)
	if err != nil {
		return err
	}

	return writeRecord(record, selectFields)
}
