// Package config loads client settings from an optional YAML file and
// PIBBLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/julianstephens/pibble/internal/constants"
	"github.com/julianstephens/pibble/internal/duedate"
)

type Config struct {
	APIBaseURL      string        `yaml:"api_base_url" env:"PIBBLE_API_BASE_URL" env-default:"http://127.0.0.1:8000" env-description:"ProtectPibble server address"`
	ReferenceZone   string        `yaml:"reference_zone" env:"PIBBLE_REFERENCE_ZONE" env-default:"America/Los_Angeles" env-description:"IANA zone due dates are entered and shown in"`
	Cache           string        `yaml:"cache" env:"PIBBLE_CACHE" env-default:"~/.config/pibble/cache.db" env-description:"SQLite path, postgres:// or redis:// URL for the response cache"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" env:"PIBBLE_HTTP_TIMEOUT" env-default:"15s" env-description:"Per-request timeout"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"PIBBLE_REFRESH_INTERVAL" env-default:"15s" env-description:"Dashboard refetch interval"`
	Debug           bool          `yaml:"debug" env:"PIBBLE_DEBUG" env-default:"false" env-description:"Verbose logging to stderr"`

	// ConfigDir holds logs and the default cache. It is derived, not read.
	ConfigDir string `yaml:"-" env:"-"`
}

// Overrides are command-line values that win over file and environment
type Overrides struct {
	APIBaseURL    string
	ReferenceZone string
	Cache         string
	Debug         bool
}

// Load reads path (or the default config file when path is empty) and then
// the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = constants.DefaultConfigFile
	}
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if errors.Is(statErr, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("reading config %s: %w", path, statErr)
	}

	cfg.ConfigDir = filepath.Dir(path)
	return &cfg, nil
}

// Apply merges non-empty overrides into cfg
func (c *Config) Apply(o Overrides) {
	if o.APIBaseURL != "" {
		c.APIBaseURL = o.APIBaseURL
	}
	if o.ReferenceZone != "" {
		c.ReferenceZone = o.ReferenceZone
	}
	if o.Cache != "" {
		c.Cache = o.Cache
	}
	if o.Debug {
		c.Debug = true
	}
}

// Validate normalizes the settings and rejects unusable ones
func (c *Config) Validate() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q (expected http:// or https://)", c.APIBaseURL)
	}
	if _, err := duedate.LoadZone(c.ReferenceZone); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh interval must be at least 1s")
	}
	if strings.TrimSpace(c.Cache) == "" {
		return fmt.Errorf("cache location cannot be empty")
	}
	return nil
}

// Zone loads the configured reference zone
func (c *Config) Zone() (*time.Location, error) {
	return duedate.LoadZone(c.ReferenceZone)
}

// CachePath returns the cache location with "~" expanded for file paths
func (c *Config) CachePath() (string, error) {
	if strings.Contains(c.Cache, "://") {
		return c.Cache, nil
	}
	return ExpandPath(c.Cache)
}

// ExpandPath replaces a leading "~" with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Usage describes the environment variables
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
