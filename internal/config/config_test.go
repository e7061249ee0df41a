package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"atelier/internal/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %s, want %s", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Layout.Timeout.Duration() != DefaultLayoutTimeout {
		t.Errorf("Layout.Timeout = %s, want %s", cfg.Layout.Timeout.Duration(), DefaultLayoutTimeout)
	}
	if cfg.Layout.Workers < 1 {
		t.Errorf("Layout.Workers = %d, want >= 1", cfg.Layout.Workers)
	}

	// A layout run must fit inside a single response
	if cfg.Server.WriteTimeout.Duration() <= cfg.Layout.Timeout.Duration() {
		t.Errorf("WriteTimeout %s should exceed layout timeout %s",
			cfg.Server.WriteTimeout.Duration(), cfg.Layout.Timeout.Duration())
	}
}

func TestProfiles(t *testing.T) {
	cfg := DefaultConfig()

	// Without overrides, presets are returned untouched
	local, global := cfg.Profiles()
	if local != layout.LocalProfile() {
		t.Errorf("local = %+v, want preset", local)
	}
	if global != layout.GlobalProfile() {
		t.Errorf("global = %+v, want preset", global)
	}

	iterations := 50
	cfg.Layout.Profiles.Global = &layout.ProfileOverride{Iterations: &iterations}

	local, global = cfg.Profiles()
	if global.Iterations != 50 {
		t.Errorf("global.Iterations = %d, want 50 (override)", global.Iterations)
	}
	// Other fields should still be from the preset
	if global.RepulsionStrength != layout.GlobalProfile().RepulsionStrength {
		t.Errorf("global.RepulsionStrength = %g, want preset value", global.RepulsionStrength)
	}
	if local != layout.LocalProfile() {
		t.Error("local profile should not be affected by a global override")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "minimal",
			yaml: "version: 1\n",
		},
		{
			name: "layout overrides",
			yaml: `
layout:
  timeout: 10s
  workers: 4
  profiles:
    local:
      repulsion_strength: 9000
      iterations: 120
`,
		},
		{
			name:    "unknown log level",
			yaml:    "log:\n  level: loud\n",
			wantErr: "log.level",
		},
		{
			name:    "negative weight floor",
			yaml:    "layout:\n  min_weight: -1\n",
			wantErr: "min_weight",
		},
		{
			name:    "bad cooling factor",
			yaml:    "layout:\n  profiles:\n    global:\n      cooling_factor: 1.5\n",
			wantErr: "layout.profiles.global",
		},
		{
			name:    "NaN local gravity",
			yaml:    "layout:\n  profiles:\n    local:\n      gravity_strength: .nan\n",
			wantErr: "layout.profiles.local",
		},
		{
			name:    "infinite global repulsion",
			yaml:    "layout:\n  profiles:\n    global:\n      repulsion_strength: .inf\n",
			wantErr: "layout.profiles.global",
		},
		{
			name:    "NaN weight floor",
			yaml:    "layout:\n  min_weight: .nan\n",
			wantErr: "min_weight",
		},
		{
			name:    "bad duration",
			yaml:    "layout:\n  timeout: soon\n",
			wantErr: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Parse() expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if cfg.Server.Addr == "" {
				t.Error("defaults should be applied after parsing")
			}
		})
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
layout:
  timeout: 10s
  profiles:
    local:
      repulsion_strength: 9000
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Layout.Timeout.Duration() != 10*time.Second {
		t.Errorf("Layout.Timeout = %s, want 10s", cfg.Layout.Timeout.Duration())
	}
	local, _ := cfg.Profiles()
	if local.RepulsionStrength != 9000 {
		t.Errorf("local.RepulsionStrength = %g, want 9000", local.RepulsionStrength)
	}
	if local.Iterations != layout.LocalProfile().Iterations {
		t.Errorf("local.Iterations = %d, want preset value", local.Iterations)
	}
}

func TestSaveAndLoad(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	// Create and save config
	cfg := DefaultConfig()
	cfg.Server.Addr = ":8080"
	seed := uint64(42)
	cfg.Layout.Seed = &seed
	strength := 1234.0
	cfg.Layout.Profiles.Local = &layout.ProfileOverride{RepulsionStrength: &strength}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Load config
	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	// Verify values
	if loaded.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", loaded.Server.Addr)
	}
	if loaded.Layout.Seed == nil || *loaded.Layout.Seed != 42 {
		t.Error("Layout.Seed should be 42")
	}
	local, _ := loaded.Profiles()
	if local.RepulsionStrength != 1234 {
		t.Errorf("local.RepulsionStrength = %g, want 1234", local.RepulsionStrength)
	}
	if loaded.Server.WriteTimeout != cfg.Server.WriteTimeout {
		t.Errorf("Server.WriteTimeout = %s, want %s",
			loaded.Server.WriteTimeout.Duration(), cfg.Server.WriteTimeout.Duration())
	}
}

func TestLoadFromPathMissing(t *testing.T) {
	_, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadFromPath() should fail for a missing file")
	}
}

func TestFindConfigPath(t *testing.T) {
	// Create temp directory with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Set working directory to temp
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// Should find config in working directory
	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Should prefer explicit env var
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")

	// Explicit path doesn't exist, should fall back
	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found = FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestSearchPaths(t *testing.T) {
	home := t.TempDir()
	xdg := t.TempDir()
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	t.Setenv(EnvConfigPath, explicit)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", home)

	local, err := filepath.Abs(ConfigFileName)
	if err != nil {
		t.Fatalf("Abs() error: %v", err)
	}
	want := []string{
		explicit,
		local,
		filepath.Join(xdg, ConfigDirName, "config.yaml"),
		filepath.Join(home, ".config", ConfigDirName, "config.yaml"),
		filepath.Join("/etc", ConfigDirName, "config.yaml"),
	}
	got := SearchPaths()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("SearchPaths() = %v, want %v", got, want)
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	if got := SearchPaths(); len(got) != 3 || got[0] != local {
		t.Errorf("SearchPaths() without overrides = %v", got)
	}
}

func TestFindConfigPathSkipsDirectories(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", xdg)

	oldWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(oldWd)

	// A directory named like the config file is not a config.
	if err := os.Mkdir(ConfigFileName, 0o755); err != nil {
		t.Fatalf("Mkdir() error: %v", err)
	}
	userPath := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if err := DefaultConfig().Save(userPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); found != userPath {
		t.Errorf("FindConfigPath() = %s, want %s", found, userPath)
	}
}

func TestSummary(t *testing.T) {
	summary := DefaultConfig().Summary()
	for _, want := range []string{DefaultAddr, DefaultDatabasePath, "local", "global"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, missing %q", summary, want)
		}
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	// Test YAML marshaling
	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
