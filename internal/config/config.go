// Package config loads and validates the hassmcp configuration file.
// YAML and JSON are both accepted (YAML is a superset of JSON), and the
// Home Assistant connection settings may be overridden by environment
// variables so the server can run without a file at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
	. "github.com/roelfdiedericks/hassmcp/internal/logging"
)

// Environment variable overrides, applied after the file is read.
const (
	EnvURL   = "HASS_URL"
	EnvToken = "HASS_TOKEN"
)

// DefaultFuzzyThreshold is the minimum score a fuzzy config-search hit
// needs before it is reported.
const DefaultFuzzyThreshold = 60

// Config is the root configuration.
type Config struct {
	HomeAssistant hass.Config  `yaml:"homeassistant" json:"homeassistant"`
	Search        SearchConfig `yaml:"search" json:"search"`
	LogLevel      string       `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
}

// SearchConfig tunes the search tools.
type SearchConfig struct {
	// FuzzyThreshold is the score floor for deep-search matches.
	FuzzyThreshold int `yaml:"fuzzyThreshold,omitempty" json:"fuzzyThreshold,omitempty"`
}

// Load reads the config file at path, applies environment overrides and
// defaults, and validates the result. An empty path skips the file and
// builds the config from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		L_debug("config: loaded file", "path", path)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.HomeAssistant.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvURL); v != "" {
		cfg.HomeAssistant.URL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.HomeAssistant.Token = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Search.FuzzyThreshold <= 0 {
		cfg.Search.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
