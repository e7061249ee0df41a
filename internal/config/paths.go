package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names a config file that takes precedence over every search location.
	EnvConfigPath = "ATELIER_CONFIG"
	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "atelier.yaml"
	// ConfigDirName is the per-user and system directory holding config.yaml.
	ConfigDirName = "atelier"

	dirConfigFile = "config.yaml"
)

// SearchPaths lists the locations atelier reads its config from, most
// specific first. Locations whose environment variable is unset are left out.
func SearchPaths() []string {
	var paths []string
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, dirConfigFile))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, dirConfigFile))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, dirConfigFile))
}

// FindConfigPath returns the first entry of SearchPaths naming a regular
// file, or "" when atelier should run on defaults.
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// EnsureConfigDir creates the directory that will hold configPath.
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0o755)
}
