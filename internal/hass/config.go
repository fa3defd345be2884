package hass

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the connection settings for a Home Assistant instance.
type Config struct {
	URL      string `yaml:"url" json:"url"`
	Token    string `yaml:"token" json:"token"`
	Insecure bool   `yaml:"insecure,omitempty" json:"insecure,omitempty"`
	Timeout  string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("home assistant URL not configured")
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("home assistant URL must start with http:// or https://")
	}
	if c.Token == "" {
		return fmt.Errorf("home assistant token not configured")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
	}
	return nil
}

// requestTimeout returns the parsed request timeout, falling back to 10s.
func (c Config) requestTimeout() time.Duration {
	if c.Timeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
