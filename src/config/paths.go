package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "turnpike"

// UserConfigPath returns the per-user configuration file location.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.json")
}

// DefaultDataDir returns the directory holding application data, honoring
// an explicit configuration when set.
func DefaultDataDir(cfg *Config) string {
	if cfg != nil && cfg.Data.Directory != "" {
		return cfg.Data.Directory
	}
	return filepath.Join(xdg.DataHome, appName)
}

// DatabasePath returns the sqlite database location for a configuration.
func DatabasePath(cfg *Config) string {
	return filepath.Join(DefaultDataDir(cfg), "turnpike.db")
}

// FindConfigFile returns the first existing configuration file, checking
// the project-local path before the user path. It returns an empty string
// when none exists; the caller falls back to defaults.
func FindConfigFile() string {
	candidates := []string{
		filepath.Join(".turnpike", "config.json"),
		UserConfigPath(),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
