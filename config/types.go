package config

import (
	"fmt"
	"time"
)

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Output  OutputConfig  `mapstructure:"output"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// ServerConfig contains RESO Web API connection settings
type ServerConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Token     string `mapstructure:"token"`
	DatasetID string `mapstructure:"dataset_id"`
	Timeout   int    `mapstructure:"timeout"`
}

// TimeoutDuration returns the request timeout as a time.Duration.
func (s ServerConfig) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// String renders the connection settings with the bearer token redacted
// so the struct is safe to log.
func (s ServerConfig) String() string {
	token := "(unset)"
	if s.Token != "" {
		token = "***"
	}
	return fmt.Sprintf("base_url=%s dataset_id=%s token=%s timeout=%ds", s.BaseURL, s.DatasetID, token, s.Timeout)
}

// OutputConfig controls how command results are rendered
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// FilterConfig contains named client-side filter expressions
type FilterConfig struct {
	Presets   map[string]string `mapstructure:"presets"`
	Default   string            `mapstructure:"default"`
	CacheSize int               `mapstructure:"cache_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig controls the self-update command
type UpdateConfig struct {
	GithubRepo string `mapstructure:"github_repo"`
}
