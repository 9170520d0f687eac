package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load loads the configuration from file and environment. A missing config
// file is not an error as long as the environment supplies the required
// connection settings; an explicit configPath that does not exist is.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "reso"))
		}
	}

	setDefaults(v)
	bindEnvironment(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file found in the search paths: defaults plus RESO_* environment
		// variables may still form a complete configuration.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.timeout", 30)

	v.SetDefault("output.format", "table")

	v.SetDefault("filter.cache_size", 128)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("update.github_repo", "jeremeybingham/reso-client")
}

// bindEnvironment maps RESO_* environment variables onto config keys so the
// client can run without any config file at all.
func bindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix("RESO")

	_ = v.BindEnv("server.base_url", "RESO_BASE_URL")
	_ = v.BindEnv("server.token", "RESO_TOKEN")
	_ = v.BindEnv("server.dataset_id", "RESO_DATASET_ID")
	_ = v.BindEnv("server.timeout", "RESO_TIMEOUT")
	_ = v.BindEnv("output.format", "RESO_OUTPUT_FORMAT")
	_ = v.BindEnv("logging.level", "RESO_LOG_LEVEL")
}

func validate(cfg *Config) error {
	if cfg.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required (or set RESO_BASE_URL)")
	}
	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server.base_url: %s", cfg.Server.BaseURL)
	}
	if cfg.Server.Token == "" {
		return fmt.Errorf("server.token is required (or set RESO_TOKEN)")
	}
	if cfg.Server.Timeout <= 0 {
		return fmt.Errorf("invalid server.timeout: %d (must be positive)", cfg.Server.Timeout)
	}

	validFormats := map[string]bool{"table": true, "json": true, "ndjson": true}
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("invalid output.format: %s (must be 'table', 'json', or 'ndjson')", cfg.Output.Format)
	}

	if cfg.Filter.CacheSize <= 0 {
		return fmt.Errorf("invalid filter.cache_size: %d (must be positive)", cfg.Filter.CacheSize)
	}
	if cfg.Filter.Default != "" {
		if _, ok := cfg.Filter.Presets[cfg.Filter.Default]; !ok {
			return fmt.Errorf("filter.default references unknown preset: %s", cfg.Filter.Default)
		}
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", cfg.Logging.Level)
	}

	validLogFormats := map[string]bool{"console": true, "json": true}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be 'console' or 'json')", cfg.Logging.Format)
	}

	return nil
}
