// Package config loads scraper settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/location"
)

const (
	DefaultTimezone    = "Europe/Paris"
	DefaultMaxDuration = 48 * time.Hour
	DefaultOutputDir   = "~/.local/share/fresque-scraper"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultUserAgent   = location.DefaultUserAgent
)

// Environment variables that override the file
const (
	EnvTimezone    = "FRESQUE_TIMEZONE"
	EnvGeocoderURL = "FRESQUE_GEOCODER_URL"
	EnvUserAgent   = "FRESQUE_USER_AGENT"
	EnvOutputDir   = "FRESQUE_OUTPUT_DIR"
)

// Geocoder configures the geocoding backend
type Geocoder struct {
	BaseURL     string        `yaml:"base_url"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// HTTP configures page fetching
type HTTP struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Source is one listing page to scrape
type Source struct {
	Name   string       `yaml:"name"`
	Family event.Family `yaml:"family"`
	URL    string       `yaml:"url"`
	// Iframe is the id of the iframe holding a Billetweb listing
	Iframe string `yaml:"iframe,omitempty"`
	// ID is both the record id prefix and the workshop type code
	ID int `yaml:"id"`
}

// Config is the full scraper configuration
type Config struct {
	Timezone         string        `yaml:"timezone"`
	MaxEventDuration time.Duration `yaml:"max_event_duration"`
	OutputDir        string        `yaml:"output_dir"`
	LogLevel         string        `yaml:"log_level"`
	Geocoder         Geocoder      `yaml:"geocoder"`
	HTTP             HTTP          `yaml:"http"`
	Sources          []Source      `yaml:"sources"`
}

// Load reads path (when non-empty), applies environment overrides and
// defaults, then validates the result.
func Load(path string) (*Config, error) {
	c := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	c.applyEnv()
	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvGeocoderURL); v != "" {
		c.Geocoder.BaseURL = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.Geocoder.UserAgent = v
		c.HTTP.UserAgent = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}

func (c *Config) setDefaults() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.MaxEventDuration == 0 {
		c.MaxEventDuration = DefaultMaxDuration
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Geocoder.BaseURL == "" {
		c.Geocoder.BaseURL = location.NominatimURL
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = DefaultUserAgent
	}
	if c.Geocoder.Timeout == 0 {
		c.Geocoder.Timeout = location.GeocoderTimeout
	}
	if c.Geocoder.MinInterval == 0 {
		c.Geocoder.MinInterval = location.GeocoderInterval
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = DefaultUserAgent
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
}

// Validate checks the timezone, durations and every source
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.MaxEventDuration < 0 {
		return errors.New("max_event_duration must be non-negative")
	}
	if c.Geocoder.Timeout < 0 || c.HTTP.Timeout < 0 {
		return errors.New("timeouts must be non-negative")
	}
	if c.Geocoder.MinInterval < 0 {
		return errors.New("geocoder.min_interval must be non-negative")
	}

	seen := make(map[string]bool)
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source at index %d has no name", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name: %s", src.Name)
		}
		seen[src.Name] = true

		if !src.Family.Valid() {
			return fmt.Errorf("source %s: unknown family %q", src.Name, src.Family)
		}
		if src.URL == "" {
			return fmt.Errorf("source %s: url is required", src.Name)
		}
		if src.Family == event.FamilyBilletweb && src.Iframe == "" {
			return fmt.Errorf("source %s: billetweb sources need an iframe id", src.Name)
		}
	}
	return nil
}

// Location returns the origin timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SelectSources returns the sources whose name or family matches one of
// names (case-insensitive). No names selects every source.
func (c *Config) SelectSources(names []string) ([]Source, error) {
	if len(names) == 0 {
		return c.Sources, nil
	}

	var selected []Source
	for _, name := range names {
		matched := false
		for _, src := range c.Sources {
			if strings.EqualFold(src.Name, name) || strings.EqualFold(string(src.Family), name) {
				selected = append(selected, src)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown source: %s", name)
		}
	}
	return selected, nil
}
