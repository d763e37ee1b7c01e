package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders markdown text with glamour styling.
// Returns raw markdown on failure.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth(80, 100)),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
