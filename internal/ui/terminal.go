package ui

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ThemeMode represents the CLI color scheme mode.
type ThemeMode string

const (
	// ThemeModeAuto lets the terminal background guide color selection.
	ThemeModeAuto ThemeMode = "auto"
	// ThemeModeDark forces dark mode colors (light text on dark background).
	ThemeModeDark ThemeMode = "dark"
	// ThemeModeLight forces light mode colors (dark text on light background).
	ThemeModeLight ThemeMode = "light"
)

// ThemeEnv overrides the configured theme.
const ThemeEnv = "I3WSN_THEME"

var themeMode ThemeMode

var hasDarkBackground bool

// InitTheme initializes the theme mode. configTheme is the theme from
// settings.toml and may be empty.
func InitTheme(configTheme string) {
	themeMode = resolveThemeMode(configTheme)
	hasDarkBackground = detectDarkBackground(themeMode)
}

// GetThemeMode returns the current CLI color scheme mode.
// Priority order:
//  1. I3WSN_THEME environment variable ("dark", "light", "auto")
//  2. Configured value from settings (passed to InitTheme)
//  3. Default: "auto"
func GetThemeMode() ThemeMode {
	return themeMode
}

// HasDarkBackground returns true if we're displaying on a dark background.
func HasDarkBackground() bool {
	return hasDarkBackground
}

func resolveThemeMode(configTheme string) ThemeMode {
	if mode, ok := parseThemeMode(os.Getenv(ThemeEnv)); ok {
		return mode
	}
	if mode, ok := parseThemeMode(configTheme); ok {
		return mode
	}
	return ThemeModeAuto
}

func parseThemeMode(s string) (ThemeMode, bool) {
	switch strings.ToLower(s) {
	case "dark":
		return ThemeModeDark, true
	case "light":
		return ThemeModeLight, true
	case "auto":
		return ThemeModeAuto, true
	}
	return "", false
}

func detectDarkBackground(mode ThemeMode) bool {
	switch mode {
	case ThemeModeDark:
		return true
	case ThemeModeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used.
// Respects NO_COLOR (https://no-color.org/), CLICOLOR, and CLICOLOR_FORCE conventions.
func ShouldUseColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if _, exists := os.LookupEnv("CLICOLOR_FORCE"); exists {
		return true
	}
	return IsTerminal()
}

// TerminalWidth returns the stdout width, capped at max, or def when stdout
// is not a terminal.
func TerminalWidth(def, max int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return def
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return def
	}
	if max > 0 && width > max {
		return max
	}
	return width
}
