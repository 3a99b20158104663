// Package config loads settings from an optional YAML file, then applies
// CMMC_* environment overrides, then validates the result.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CMMC"

// Config holds all application configuration
type Config struct {
	Storage      StorageConfig      `yaml:"storage" split_words:"true"`
	Organization OrganizationConfig `yaml:"organization" split_words:"true"`
	Logging      LoggingConfig      `yaml:"logging" split_words:"true"`
}

// StorageConfig sizes are in bytes and use the UTF-16 accounting of the
// storage guard.
type StorageConfig struct {
	Path           string `yaml:"path" split_words:"true"`
	DocumentKey    string `yaml:"document_key" split_words:"true"`
	Ephemeral      bool   `yaml:"ephemeral" split_words:"true"`
	WarnBytes      int64  `yaml:"warn_bytes" split_words:"true"`
	HardBytes      int64  `yaml:"hard_bytes" split_words:"true"`
	MaxEntryBytes  int64  `yaml:"max_entry_bytes" split_words:"true"`
	MaxFieldLength int    `yaml:"max_field_length" split_words:"true"`
}

type OrganizationConfig struct {
	Name string `yaml:"name" split_words:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:           "cmmc.db",
			DocumentKey:    "cmmc-inventory",
			WarnBytes:      3670016,
			HardBytes:      4718592,
			MaxEntryBytes:  1048576,
			MaxFieldLength: 5000,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads path when it exists, applies environment overrides and
// validates. An empty or missing path leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.DocumentKey == "" {
		return fmt.Errorf("storage document key not specified")
	}
	if !c.Storage.Ephemeral && c.Storage.Path == "" {
		return fmt.Errorf("storage path not specified")
	}
	if c.Storage.WarnBytes <= 0 || c.Storage.HardBytes <= 0 || c.Storage.MaxEntryBytes <= 0 {
		return fmt.Errorf("storage limits must be positive")
	}
	if c.Storage.WarnBytes >= c.Storage.HardBytes {
		return fmt.Errorf("storage warn threshold (%d) must be below hard threshold (%d)", c.Storage.WarnBytes, c.Storage.HardBytes)
	}
	if c.Storage.MaxEntryBytes > c.Storage.HardBytes {
		return fmt.Errorf("storage entry ceiling (%d) exceeds hard threshold (%d)", c.Storage.MaxEntryBytes, c.Storage.HardBytes)
	}
	if c.Storage.MaxFieldLength <= 0 {
		return fmt.Errorf("max field length must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'console')", c.Logging.Format)
	}
	return nil
}
