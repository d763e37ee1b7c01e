package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"gitlab.com/flib99/i3-workspace-names/internal/util"
)

// Common errors
var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrExists          = errors.New("file already exists")
)

// DefaultIconURL is where the Font Awesome icon metadata is fetched from.
const DefaultIconURL = "https://raw.githubusercontent.com/FortAwesome/Font-Awesome/master/metadata/icons.json"

// DefaultDebounce is how long the daemon waits for a burst of window
// events to settle before relabeling.
const DefaultDebounce = 50 * time.Millisecond

// Settings are the daemon options that may live in settings.toml.
// Command-line flags take precedence over every field.
type Settings struct {
	// ShowTitles appends each window's shortened title to its icon.
	ShowTitles bool `toml:"show_titles"`

	// Debounce is the quiet period before a relabel. Zero relabels on
	// every event.
	Debounce Duration `toml:"debounce"`

	// IconURL is the Font Awesome metadata document to download.
	IconURL string `toml:"icon_url"`

	// CacheDir holds the downloaded icon cache.
	CacheDir string `toml:"cache_dir,omitempty"`

	// IconCache overrides the icon cache file path.
	IconCache string `toml:"icon_cache,omitempty"`

	// CustomIcons is a JSON file of icon name -> glyph overrides.
	CustomIcons string `toml:"custom_icons,omitempty"`

	// SocketPath overrides the i3/sway IPC socket.
	SocketPath string `toml:"socket_path,omitempty"`

	// Theme selects the CLI color scheme: auto, dark or light.
	Theme string `toml:"theme,omitempty"`
}

// Duration is a wrapper for time.Duration that supports TOML marshaling.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		Debounce: Duration{DefaultDebounce},
		IconURL:  DefaultIconURL,
		Theme:    "auto",
	}
}

// LoadSettings reads a settings file on top of the defaults. A missing
// file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the operator's settings file
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	md, err := toml.Decode(string(data), s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidSettings, path, strings.Join(keys, ", "))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings writes settings to path, creating its directory.
func SaveSettings(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Validate checks field values.
func (s *Settings) Validate() error {
	if s.Debounce.Duration < 0 {
		return fmt.Errorf("%w: debounce must not be negative, got %s", ErrInvalidSettings, s.Debounce)
	}
	if s.IconURL == "" {
		return fmt.Errorf("%w: icon_url", ErrInvalidSettings)
	}
	switch strings.ToLower(s.Theme) {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("%w: theme must be auto, dark or light, got %q", ErrInvalidSettings, s.Theme)
	}
	return nil
}

// IconCachePath resolves the icon cache file from the settings.
func (s *Settings) IconCachePath() string {
	if s.IconCache != "" {
		return s.IconCache
	}
	return IconCachePath(s.CacheDir)
}

// CustomIconsPath resolves the custom icon file from the settings.
func (s *Settings) CustomIconsPath() string {
	if s.CustomIcons != "" {
		return s.CustomIcons
	}
	return CustomIconsPath()
}
