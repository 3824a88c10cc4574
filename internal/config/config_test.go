package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIBaseURL != "http://127.0.0.1:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.ReferenceZone != "America/Los_Angeles" {
		t.Errorf("ReferenceZone = %q", cfg.ReferenceZone)
	}
	if cfg.HTTPTimeout != 15*time.Second || cfg.RefreshInterval != 15*time.Second {
		t.Errorf("durations = %v, %v", cfg.HTTPTimeout, cfg.RefreshInterval)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, dir)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "api_base_url: https://pibble.example.com/\nreference_zone: America/New_York\nrefresh_interval: 30s\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("PIBBLE_REFERENCE_ZONE", "America/Chicago")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://pibble.example.com/" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.ReferenceZone != "America/Chicago" {
		t.Errorf("environment should win over file, got %q", cfg.ReferenceZone)
	}
	if cfg.RefreshInterval != 30*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.APIBaseURL != "https://pibble.example.com" {
		t.Errorf("trailing slash not trimmed: %q", cfg.APIBaseURL)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{APIBaseURL: "http://a", ReferenceZone: "UTC", Cache: "x.db"}
	cfg.Apply(Overrides{APIBaseURL: "http://b", Debug: true})
	if cfg.APIBaseURL != "http://b" || cfg.ReferenceZone != "UTC" || cfg.Cache != "x.db" || !cfg.Debug {
		t.Errorf("Apply() = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			APIBaseURL:      "http://127.0.0.1:8000",
			ReferenceZone:   "UTC",
			Cache:           "cache.db",
			HTTPTimeout:     time.Second,
			RefreshInterval: 15 * time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ftp://host" }, true},
		{"no host", func(c *Config) { c.APIBaseURL = "http://" }, true},
		{"bad zone", func(c *Config) { c.ReferenceZone = "Nowhere/Special" }, true},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"fast refresh", func(c *Config) { c.RefreshInterval = 100 * time.Millisecond }, true},
		{"empty cache", func(c *Config) { c.Cache = " " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/.config/pibble/cache.db")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if got != filepath.Join(home, ".config/pibble/cache.db") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got, _ := ExpandPath("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("ExpandPath() changed an absolute path: %q", got)
	}
}

func TestCachePathKeepsURLs(t *testing.T) {
	cfg := &Config{Cache: "redis://localhost:6379/0"}
	got, err := cfg.CachePath()
	if err != nil || got != "redis://localhost:6379/0" {
		t.Errorf("CachePath() = %q, %v", got, err)
	}
}

func TestUsageListsVariables(t *testing.T) {
	if usage := Usage(); !strings.Contains(usage, "PIBBLE_API_BASE_URL") {
		t.Errorf("Usage() = %q", usage)
	}
}
