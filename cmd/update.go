package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/config"
)

const defaultUpdateRepo = "jeremeybingham/reso-client"

var updateCheckOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update reso to the latest release",
	Long: `Check GitHub for a newer release and replace the current binary in place.

Development builds cannot be updated; install a released binary first.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "check for a newer release without installing it")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if _, err := semver.ParseTolerant(appVersion); err != nil {
		return fmt.Errorf("cannot update development build '%s': install a released binary first", appVersion)
	}

	// The update command runs without full configuration; a valid config
	// file may still override the release repository.
	repo := defaultUpdateRepo
	if c, err := config.Load(cfgFile); err == nil && c.Update.GithubRepo != "" {
		repo = c.Update.GithubRepo
	}

	ctx := context.Background()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repo)
	}

	if latest.LessOrEqual(appVersion) {
		fmt.Printf("reso %s is up to date.\n", appVersion)
		return nil
	}

	fmt.Printf("New release available: %s (current: %s)\n", latest.Version(), appVersion)
	if latest.ReleaseNotes != "" {
		fmt.Printf("\n%s\n", latest.ReleaseNotes)
	}

	if updateCheckOnly {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	fmt.Printf("Updating to %s...\n", latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Successfully updated to %s\n", latest.Version())
	return nil
}
