package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeremeybingham/reso-client/reso"
)

var countAll bool

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count [resource]",
	Short: "Count records in a resource",
	Long: `Count records via the OData $count endpoint. With --filter the count
is restricted to matching records. With --all every standard resource is
counted concurrently.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)

	countCmd.Flags().StringVarP(&serverFilter, "filter", "f", "", "OData $filter expression")
	countCmd.Flags().BoolVar(&countAll, "all", false, "count every standard resource")
}

func runCount(cmd *cobra.Command, args []string) error {
	if countAll {
		return countAllResources(context.Background())
	}
	if len(args) == 0 {
		return fmt.Errorf("resource name required unless --all is given")
	}

	builder := reso.NewQueryBuilder(args[0]).Count()
	if serverFilter != "" {
		builder.Filter(serverFilter)
	}

	query, err := builder.Build()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(client.BuildURL(query.ToODataString()))
		return nil
	}

	count, err := client.ExecuteCount(context.Background(), query)
	if err != nil {
		return err
	}

	fmt.Println(count)
	return nil
}

// countAllResources queries $count for each standard resource concurrently
// and prints a summary table. Resources the server does not host show an
// error cell instead of failing the whole run.
func countAllResources(ctx context.Context) error {
	names := reso.StandardResourceNames()

	if dryRun {
		for _, name := range names {
			query, err := reso.NewQueryBuilder(name).Count().Build()
			if err != nil {
				return err
			}
			fmt.Println(client.BuildURL(query.ToODataString()))
		}
		return nil
	}

	counts := make([]int64, len(names))
	failures := make([]error, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		g.Go(func() error {
			query, err := reso.NewQueryBuilder(name).Count().Build()
			if err != nil {
				return err
			}
			count, err := client.ExecuteCount(gctx, query)
			if err != nil {
				failures[i] = err
				return nil
			}
			counts[i] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Resource", "Records"})
	for i, name := range names {
		cell := strconv.FormatInt(counts[i], 10)
		if failures[i] != nil {
			var apiErr *reso.APIError
			if errors.As(failures[i], &apiErr) {
				cell = fmt.Sprintf("error (%d)", apiErr.StatusCode)
			} else {
				cell = "error"
			}
		}
		table.Append([]string{name, cell})
	}
	return table.Render()
}
