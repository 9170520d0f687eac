package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/reso"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the RESO server",
	Long:  `Send a minimal query to verify the base URL, bearer token, and dataset are accepted by the server.`,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to %s...\n", cfg.Server.BaseURL)

	ctx := context.Background()
	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	fmt.Println("✓ Connection successful!")

	// Best-effort stats; a server may not host the Property resource.
	query, err := reso.NewQueryBuilder("Property").Count().Build()
	if err != nil {
		return err
	}
	if count, err := client.ExecuteCount(ctx, query); err == nil {
		fmt.Printf("- Property records: %d\n", count)
	}

	return nil
}
