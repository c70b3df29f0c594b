// Package config loads service settings from an optional JSON file.
// Flags override whatever the file provides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ServiceConfig holds the settings for the buffer API service. Fields are
// pointers so a config file can set only the values it cares about and
// leave the rest at their defaults.
type ServiceConfig struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen *string `json:"listen,omitempty"`

	// DBFile is the sqlite file recording run history.
	DBFile *string `json:"db_file,omitempty"`

	// OutDir, when set, confines artifact paths in API requests to this
	// directory. Empty means paths are written wherever the client asks.
	OutDir *string `json:"out_dir,omitempty"`

	// StepTimeout bounds each pipeline step, as a duration string like "2m".
	StepTimeout *string `json:"step_timeout,omitempty"`
}

// Settings is a ServiceConfig with every field resolved.
type Settings struct {
	Listen      string
	DBFile      string
	OutDir      string
	StepTimeout time.Duration
}

// Defaults returns the settings used when no config file is given.
func Defaults() Settings {
	return Settings{
		Listen:      ":8080",
		DBFile:      "pointbuffer.db",
		StepTimeout: 2 * time.Minute,
	}
}

// Load reads the config file at path and applies it over Defaults.
// An empty path returns Defaults unchanged.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ServiceConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return settings, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.apply(&settings); err != nil {
		return settings, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return settings, nil
}

func (c *ServiceConfig) apply(s *Settings) error {
	if c.Listen != nil {
		s.Listen = *c.Listen
	}
	if c.DBFile != nil {
		s.DBFile = *c.DBFile
	}
	if c.OutDir != nil {
		s.OutDir = *c.OutDir
	}
	if c.StepTimeout != nil {
		d, err := time.ParseDuration(*c.StepTimeout)
		if err != nil {
			return fmt.Errorf("step_timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("step_timeout must be positive, got %s", d)
		}
		s.StepTimeout = d
	}
	return nil
}
