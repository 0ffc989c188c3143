// Package config loads persistent CLI defaults from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the user-tunable defaults for scan-categories. Flags given
// on the command line override these.
type Config struct {
	// Threads pins the worker count; zero means pick from Parallelism.
	Threads int `yaml:"threads"`

	// Parallelism is the preset used when Threads is zero: low, balanced
	// or high.
	Parallelism string `yaml:"parallelism"`

	TopFilesPerCategory int  `yaml:"top_files_per_category"`
	ShowAllFiles        bool `yaml:"show_all_files"`

	// ProgressIntervalMs is how often the live progress line redraws,
	// in milliseconds.
	ProgressIntervalMs int `yaml:"progress_interval_ms"`

	// DisableEstimateCache turns off the per-root denominator cache.
	DisableEstimateCache bool `yaml:"disable_estimate_cache"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Parallelism:         "high",
		TopFilesPerCategory: 20,
		ProgressIntervalMs:  250,
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the scanner cannot honor.
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0")
	}
	switch c.Parallelism {
	case "low", "balanced", "high":
	default:
		return fmt.Errorf("parallelism must be low, balanced or high, got %q", c.Parallelism)
	}
	if c.TopFilesPerCategory < 0 {
		return fmt.Errorf("top_files_per_category must be >= 0")
	}
	if c.ProgressIntervalMs < 0 {
		return fmt.Errorf("progress_interval_ms must be >= 0")
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scan-categories", "config.yaml"), nil
}
