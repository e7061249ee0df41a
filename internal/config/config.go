// Package config provides configuration management for Atelier.
//
// Config file locations (priority order):
//  1. $ATELIER_CONFIG
//  2. ./atelier.yaml
//  3. $XDG_CONFIG_HOME/atelier/config.yaml
//  4. ~/.config/atelier/config.yaml
//  5. /etc/atelier/config.yaml
//
// The layout section can be edited while the server runs; profile overrides
// are picked up by the watcher without a restart.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"atelier/internal/layout"
)

// Defaults
const (
	DefaultAddr          = ":3000"
	DefaultDatabasePath  = "./atelier.db"
	DefaultLogLevel      = "info"
	DefaultLayoutTimeout = 30 * time.Second
	DefaultMaxConcurrent = 2
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config data and fills defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(60 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}

	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if c.Layout.Timeout == 0 {
		c.Layout.Timeout = Duration(DefaultLayoutTimeout)
	}
	if c.Layout.Workers <= 0 {
		c.Layout.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Layout.MaxConcurrent <= 0 {
		c.Layout.MaxConcurrent = DefaultMaxConcurrent
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	if !(c.Layout.MinWeight >= 0) || math.IsInf(c.Layout.MinWeight, 0) {
		return fmt.Errorf("layout.min_weight must be finite and not negative")
	}

	local, global := c.Profiles()
	if err := local.Validate(); err != nil {
		return fmt.Errorf("layout.profiles.local: %w", err)
	}
	if err := global.Validate(); err != nil {
		return fmt.Errorf("layout.profiles.global: %w", err)
	}
	return nil
}

// Profiles returns the local and global presets with overrides applied
func (c *Config) Profiles() (layout.Profile, layout.Profile) {
	return c.Layout.Profiles.Local.Apply(layout.LocalProfile()),
		c.Layout.Profiles.Global.Apply(layout.GlobalProfile())
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	local, global := c.Profiles()

	summary := fmt.Sprintf("Listen: %s, Database: %s, Log: %s\n", c.Server.Addr, c.Database.Path, c.Log.Level)
	summary += fmt.Sprintf("Layout: timeout %s, workers %d, max concurrent %d\n",
		c.Layout.Timeout.Duration(), c.Layout.Workers, c.Layout.MaxConcurrent)
	summary += fmt.Sprintf("Profiles: local (%d iterations, repulsion %g), global (%d iterations, repulsion %g)",
		local.Iterations, local.RepulsionStrength, global.Iterations, global.RepulsionStrength)

	return summary
}
