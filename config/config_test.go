package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "https://api.mlsgrid.com/v2",
			Token:   "secret-token",
			Timeout: 30,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Filter: FilterConfig{
			CacheSize: 128,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(cfg *Config) { cfg.Server.BaseURL = "" },
			wantErr: "server.base_url is required",
		},
		{
			name:    "base URL without scheme",
			mutate:  func(cfg *Config) { cfg.Server.BaseURL = "api.mlsgrid.com/v2" },
			wantErr: "invalid server.base_url",
		},
		{
			name:    "missing token",
			mutate:  func(cfg *Config) { cfg.Server.Token = "" },
			wantErr: "server.token is required",
		},
		{
			name:    "zero timeout",
			mutate:  func(cfg *Config) { cfg.Server.Timeout = 0 },
			wantErr: "invalid server.timeout",
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.Server.Timeout = -5 },
			wantErr: "invalid server.timeout",
		},
		{
			name:    "unknown output format",
			mutate:  func(cfg *Config) { cfg.Output.Format = "csv" },
			wantErr: "invalid output.format: csv",
		},
		{
			name:    "zero filter cache size",
			mutate:  func(cfg *Config) { cfg.Filter.CacheSize = 0 },
			wantErr: "invalid filter.cache_size",
		},
		{
			name:    "default filter without matching preset",
			mutate:  func(cfg *Config) { cfg.Filter.Default = "active" },
			wantErr: "filter.default references unknown preset: active",
		},
		{
			name: "default filter with matching preset",
			mutate: func(cfg *Config) {
				cfg.Filter.Presets = map[string]string{"active": `StandardStatus == "Active"`}
				cfg.Filter.Default = "active"
			},
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "verbose" },
			wantErr: "invalid logging.level: verbose",
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "logfmt" },
			wantErr: "invalid logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `server:
  base_url: https://api.mlsgrid.com/v2
  token: file-token
  dataset_id: actris_ref
output:
  format: ndjson
filter:
  presets:
    active: StandardStatus == "Active"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.BaseURL != "https://api.mlsgrid.com/v2" {
		t.Errorf("BaseURL = %q, want %q", cfg.Server.BaseURL, "https://api.mlsgrid.com/v2")
	}
	if cfg.Server.Token != "file-token" {
		t.Errorf("Token = %q, want %q", cfg.Server.Token, "file-token")
	}
	if cfg.Server.DatasetID != "actris_ref" {
		t.Errorf("DatasetID = %q, want %q", cfg.Server.DatasetID, "actris_ref")
	}
	if cfg.Output.Format != "ndjson" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "ndjson")
	}

	// Unset keys fall back to defaults.
	if cfg.Server.Timeout != 30 {
		t.Errorf("Timeout = %d, want default 30", cfg.Server.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, "info")
	}
	if cfg.Filter.CacheSize != 128 {
		t.Errorf("Filter.CacheSize = %d, want default 128", cfg.Filter.CacheSize)
	}
	if got := cfg.Filter.Presets["active"]; got != `StandardStatus == "Active"` {
		t.Errorf("Filter.Presets[active] = %q, want the preset expression", got)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	// Point HOME at an empty directory so no real config file is picked up.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RESO_BASE_URL", "https://api.bridgedataoutput.com/api/v2/OData")
	t.Setenv("RESO_TOKEN", "env-token")
	t.Setenv("RESO_DATASET_ID", "test_dataset")
	t.Setenv("RESO_TIMEOUT", "60")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.BaseURL != "https://api.bridgedataoutput.com/api/v2/OData" {
		t.Errorf("BaseURL = %q, want env value", cfg.Server.BaseURL)
	}
	if cfg.Server.Token != "env-token" {
		t.Errorf("Token = %q, want %q", cfg.Server.Token, "env-token")
	}
	if cfg.Server.DatasetID != "test_dataset" {
		t.Errorf("DatasetID = %q, want %q", cfg.Server.DatasetID, "test_dataset")
	}
	if cfg.Server.Timeout != 60 {
		t.Errorf("Timeout = %d, want 60", cfg.Server.Timeout)
	}
	if got := cfg.Server.TimeoutDuration(); got != 60*time.Second {
		t.Errorf("TimeoutDuration() = %v, want %v", got, 60*time.Second)
	}
}

func TestLoadMissingEverything(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RESO_BASE_URL", "")
	t.Setenv("RESO_TOKEN", "")
	t.Chdir(t.TempDir())

	if _, err := Load(""); err == nil {
		t.Fatal("Load() expected error when no file and no environment, got nil")
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected error for missing explicit config path, got nil")
	}
}

func TestServerConfigStringRedactsToken(t *testing.T) {
	s := ServerConfig{
		BaseURL:   "https://api.mlsgrid.com/v2",
		Token:     "super-secret-token",
		DatasetID: "actris_ref",
		Timeout:   30,
	}

	out := s.String()
	if strings.Contains(out, "super-secret-token") {
		t.Errorf("String() leaked the token: %q", out)
	}
	if !strings.Contains(out, "https://api.mlsgrid.com/v2") {
		t.Errorf("String() missing base URL: %q", out)
	}

	empty := ServerConfig{}
	if !strings.Contains(empty.String(), "(unset)") {
		t.Errorf("String() for empty token = %q, want it to mark the token unset", empty.String())
	}
}
