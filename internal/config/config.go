// Package config loads the optional hulk.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up next to the input file
const FileName = "hulk.yaml"

// Config holds the settings read from hulk.yaml
type Config struct {
	Path string `yaml:"-"` // empty when no file was found

	MaxErrors int             `yaml:"max_errors"` // 0 means unlimited
	Color     bool            `yaml:"color"`
	Verbose   bool            `yaml:"verbose"`
	Lint      map[string]bool `yaml:"lint"`
	LayoutOut string          `yaml:"layout_out"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{Color: true}
}

// Load parses the configuration file at path. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

// Find loads hulk.yaml from the directory containing input, falling back
// to the defaults when there is none
func Find(input string) (*Config, error) {
	path := filepath.Join(filepath.Dir(input), FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	return Load(path)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	return nil
}

// RuleEnabled reports whether a lint rule is on. Rules are on unless the
// lint map turns them off.
func (c *Config) RuleEnabled(rule string) bool {
	enabled, ok := c.Lint[rule]
	return !ok || enabled
}

// LayoutPath resolves layout_out relative to the configuration file
func (c *Config) LayoutPath() string {
	if c.LayoutOut == "" || filepath.IsAbs(c.LayoutOut) || c.Path == "" {
		return c.LayoutOut
	}
	return filepath.Join(filepath.Dir(c.Path), c.LayoutOut)
}
