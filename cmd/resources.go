package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/reso"
)

var resourceCounts bool

// resourcesCmd represents the resources command
var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the standard RESO resources",
	Long: `List the resource names defined by the RESO Data Dictionary that this
client knows how to query. With --counts each resource is also counted
against the configured server.`,
	RunE: runResources,
}

func init() {
	rootCmd.AddCommand(resourcesCmd)

	resourcesCmd.Flags().BoolVar(&resourceCounts, "counts", false, "also query the live record count for each resource")
}

func runResources(cmd *cobra.Command, args []string) error {
	if resourceCounts {
		return countAllResources(context.Background())
	}

	for _, name := range reso.StandardResourceNames() {
		fmt.Println(name)
	}
	return nil
}
