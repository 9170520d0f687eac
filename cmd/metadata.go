package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/reso"
)

var metadataRaw bool

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Fetch and summarize the server's $metadata document",
	Long: `Fetch the EDMX $metadata document and print a summary of the entity
types the server exposes. Use --raw to dump the XML unparsed.`,
	RunE: runMetadata,
}

func init() {
	rootCmd.AddCommand(metadataCmd)

	metadataCmd.Flags().BoolVar(&metadataRaw, "raw", false, "print the raw EDMX XML instead of a summary")
}

func runMetadata(cmd *cobra.Command, args []string) error {
	if dryRun {
		fmt.Println(client.BuildURL("$metadata"))
		return nil
	}

	xmlText, err := client.FetchMetadata(context.Background())
	if err != nil {
		return err
	}

	if metadataRaw {
		fmt.Print(xmlText)
		return nil
	}

	schema, err := reso.ParseMetadata(xmlText)
	if err != nil {
		return err
	}

	fmt.Printf("Namespace: %s\n\n", schema.Namespace)

	standard := make(map[string]bool)
	for _, name := range schema.StandardResources() {
		standard[name] = true
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Entity", "Properties", "Standard"})
	for _, name := range schema.EntityNames() {
		entity := schema.Entities[name]
		isStandard := ""
		if standard[name] {
			isStandard = "yes"
		}
		table.Append([]string{name, strconv.Itoa(len(entity.Properties)), isStandard})
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("\n%d entity types, %d standard resources available.\n",
		len(schema.Entities), len(schema.StandardResources()))
	return nil
}
