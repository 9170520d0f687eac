package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeremeybingham/reso-client/config"
	"github.com/jeremeybingham/reso-client/reso"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *reso.Client

	appVersion   = "dev"
	appBuildTime = "unknown"

	// Command flags
	serverFilter string
	selectFields []string
	expandFields []string
	whereExpr    string
	presetName   string
	outputFormat string
	outputPath   string
	dryRun       bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reso",
	Short: "A client for querying and replicating RESO Web API data",
	Long: `reso is a CLI client for RESO Web API (OData) servers such as MLS Grid
and Bridge Interactive. It builds OData queries, fetches listing records,
walks replication cursors for bulk downloads, and renders results as
tables, JSON, or NDJSON.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records the build metadata stamped in by the linker.
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = version
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.config/reso/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "print the request URL without sending it")

	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Commands that never talk to a RESO server run without configuration.
	switch cmd.Name() {
	case "version", "update", "help", "completion":
		return nil
	case "resources":
		if !resourceCounts {
			return nil
		}
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	logger.Debug().Stringer("server", cfg.Server).Msg("Configuration loaded")

	opts := []reso.Option{
		reso.WithTimeout(cfg.Server.TimeoutDuration()),
		reso.WithUserAgent("reso-client/" + appVersion),
	}
	if cfg.Server.DatasetID != "" {
		opts = append(opts, reso.WithDatasetID(cfg.Server.DatasetID))
	}

	client, err = reso.NewClient(cfg.Server.BaseURL, cfg.Server.Token, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create RESO client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; color only when stderr is a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints the version and build time stamped into the binary
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reso %s (built %s)\n", appVersion, appBuildTime)
	},
}
