// Package config loads the dynform CLI configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/dynamic/layout"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
)

// Config mirrors the YAML file. Command line flags override every field.
type Config struct {
	Layout            string `yaml:"layout"`
	Theme             string `yaml:"theme"`
	ThemeVariant      string `yaml:"theme_variant"`
	Timezone          string `yaml:"timezone"`
	RequiredMinLength int    `yaml:"required_min_length"`
	LogLevel          string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Layout:            string(layout.KindItem),
		Timezone:          "UTC",
		RequiredMinLength: jsonschema.DefaultRequiredMinLength,
		LogLevel:          "info",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	if c.Layout != "" && !layout.Kind(c.Layout).Known() {
		return fmt.Errorf("config: unknown layout %q", c.Layout)
	}
	if c.RequiredMinLength < 0 {
		return fmt.Errorf("config: required_min_length must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, defaulting to UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level parses LogLevel for zap, defaulting to info.
func (c *Config) Level() (zapcore.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: log_level: %w", err)
	}
	return level, nil
}
