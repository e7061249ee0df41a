package config

import (
	"time"

	"atelier/internal/layout"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Layout   LayoutConfig   `yaml:"layout"`
}

// ServerConfig holds HTTP server settings.
// WriteTimeout must leave room for a full layout run.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins,omitempty"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// LayoutConfig tunes the layout engine
type LayoutConfig struct {
	Timeout       Duration `yaml:"timeout"`
	Workers       int      `yaml:"workers"`
	MaxConcurrent int      `yaml:"max_concurrent"`
	// Seed fixes initial jitter for reproducible layouts; nil = time-based
	Seed      *uint64          `yaml:"seed,omitempty"`
	MinWeight float64          `yaml:"min_weight,omitempty"`
	Profiles  ProfileOverrides `yaml:"profiles,omitempty"`
}

// ProfileOverrides adjusts the built-in presets
type ProfileOverrides struct {
	Local  *layout.ProfileOverride `yaml:"local,omitempty"`
	Global *layout.ProfileOverride `yaml:"global,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
