package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lapas/keepengine/internal/rules"
)

// Config represents the complete keepengine configuration. Every field is
// optional; command line arguments fill in or override what is missing.
type Config struct {
	RulesFile string      `yaml:"rules_file"`
	Clean     CleanConfig `yaml:"clean"`
}

// CleanConfig configures the clean command
type CleanConfig struct {
	Mode    rules.Mode `yaml:"mode"`
	Root    string     `yaml:"root"`
	DryRun  bool       `yaml:"dry_run"`
	Workers int        `yaml:"workers"`
}

// DefaultPath returns $HOME/.config/keepengine/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "keepengine", "config.yaml")
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOptional is Load, except that a missing file yields an empty default
// configuration.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}
	return cfg, err
}

// expandEnv expands environment variables in all path fields
func (c *Config) expandEnv() {
	c.RulesFile = os.ExpandEnv(c.RulesFile)
	c.Clean.Root = os.ExpandEnv(c.Clean.Root)
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Clean.Workers == 0 {
		c.Clean.Workers = 1
	}
}

// Validate checks the fields that are set
func (c *Config) Validate() error {
	if c.Clean.Mode != "" {
		if _, err := rules.ParseMode(string(c.Clean.Mode)); err != nil {
			return fmt.Errorf("clean.mode: %w", err)
		}
	}

	if c.Clean.Root != "" && !filepath.IsAbs(c.Clean.Root) {
		return fmt.Errorf("clean.root must be an absolute path: %s", c.Clean.Root)
	}

	if c.Clean.Workers < 1 {
		return fmt.Errorf("clean.workers must be at least 1, got %d", c.Clean.Workers)
	}

	return nil
}

// ValidateClean checks that everything the clean command needs is present.
// Call it after command line overrides have been applied.
func (c *Config) ValidateClean() error {
	if c.Clean.Mode == "" {
		return fmt.Errorf("clean mode is required (base or user)")
	}
	if c.RulesFile == "" {
		return fmt.Errorf("rules file is required")
	}
	if c.Clean.Root == "" {
		return fmt.Errorf("clean root is required")
	}
	return c.Validate()
}
