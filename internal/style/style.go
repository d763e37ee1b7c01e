// Package style provides consistent terminal styling using Lipgloss.
// Uses the Ayu theme colors from internal/ui for semantic consistency.
package style

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

var (
	// Success style for positive outcomes (green)
	Success = lipgloss.NewStyle().
		Foreground(ui.ColorPass).
		Bold(true)

	// Warning style for cautionary messages (yellow)
	Warning = lipgloss.NewStyle().
		Foreground(ui.ColorWarn).
		Bold(true)

	// Error style for failures (red)
	Error = lipgloss.NewStyle().
		Foreground(ui.ColorFail).
		Bold(true)

	// Info style for informational messages (blue)
	Info = lipgloss.NewStyle().
		Foreground(ui.ColorAccent)

	// Dim style for secondary information (gray)
	Dim = lipgloss.NewStyle().
		Foreground(ui.ColorMuted)

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().
		Bold(true)

	// Label style for computed workspace labels
	Label = lipgloss.NewStyle().
		Foreground(ui.ColorLabel)

	SuccessPrefix = Success.Render(ui.IconPass)
	WarningPrefix = Warning.Render(ui.IconWarn)
	ErrorPrefix   = Error.Render(ui.IconFail)
	ArrowPrefix   = Info.Render("→")
)

// PrintWarning prints a warning message to w.
// The format and args work like fmt.Printf.
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(w, "%s %s\n", Warning.Render(ui.IconWarn+" Warning:"), msg)
}

// PrintSuccess prints a success line to w.
func PrintSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", SuccessPrefix, fmt.Sprintf(format, args...))
}

// PrintAction prints an action line ("→ ...") to w.
func PrintAction(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", ArrowPrefix, fmt.Sprintf(format, args...))
}
