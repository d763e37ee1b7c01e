// Package config locates and loads the files i3-workspace-names works
// with: the labeling rules, the optional daemon settings, and the cache and
// runtime directories.
package config

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "i3-workspace-names"

// File names inside the config and cache directories.
const (
	RulesFile       = "config.json"
	SettingsFile    = "settings.toml"
	IconCacheFile   = "fa.json"
	CustomIconsFile = "custom.json"
)

// ConfigDir returns $XDG_CONFIG_HOME/i3-workspace-names, falling back to
// the platform config directory.
func ConfigDir() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", os.UserConfigDir, ".config"), AppName)
}

// CacheDir returns $XDG_CACHE_HOME/i3-workspace-names, falling back to the
// platform cache directory.
func CacheDir() string {
	return filepath.Join(xdgDir("XDG_CACHE_HOME", os.UserCacheDir, ".cache"), AppName)
}

// RuntimeDir returns $XDG_RUNTIME_DIR/i3-workspace-names. Without a runtime
// directory the cache directory is used.
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	return CacheDir()
}

// RulesPath returns the default rules file path.
func RulesPath() string {
	return filepath.Join(ConfigDir(), RulesFile)
}

// SettingsPath returns the default settings file path.
func SettingsPath() string {
	return filepath.Join(ConfigDir(), SettingsFile)
}

// CustomIconsPath returns the default custom icon file path.
func CustomIconsPath() string {
	return filepath.Join(ConfigDir(), CustomIconsFile)
}

// IconCachePath returns the icon cache path inside cacheDir, or inside the
// default cache directory when cacheDir is empty.
func IconCachePath(cacheDir string) string {
	if cacheDir == "" {
		cacheDir = CacheDir()
	}
	return filepath.Join(cacheDir, IconCacheFile)
}

// xdgDir resolves an XDG base directory from env, then the platform
// fallback, then ~/<homeRel>.
func xdgDir(env string, fallback func() (string, error), homeRel string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	if dir, err := fallback(); err == nil && dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, homeRel)
}
