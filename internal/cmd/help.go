package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

var (
	// "Daemon:", "Configuration:"
	groupHeaderRE = regexp.MustCompile(`(?m)^([A-Z][A-Za-z &]+:)\s*$`)
	// "Flags:", "Examples:"
	sectionHeaderRE = regexp.MustCompile(`(?m)^(Examples|Flags|Usage|Global Flags|Aliases|Available Commands|Additional Commands):`)
	// "  preview     Show the label..."
	cmdLineRE = regexp.MustCompile(`(?m)^(  )([a-z][a-z0-9]*(?:-[a-z0-9]+)*)(\s{2,})(.*)$`)
	// "  -c, --config string   Use a custom rules file"
	flagLineRE = regexp.MustCompile(`(?m)^(\s+)(-\w,\s+--[\w-]+|--[\w-]+)(\s+)(string|int|duration|bool)?(\s*.*)$`)
	defaultRE  = regexp.MustCompile(`(\(default[^)]*\))`)
	entryRE    = regexp.MustCompile(`(\(start here\))`)
	cmdRefRE   = regexp.MustCompile(`'([a-z][a-z0-9 -]+)'`)
)

// colorizedHelpFunc prints cobra's help with the accent palette applied.
func colorizedHelpFunc(cmd *cobra.Command, args []string) {
	var output strings.Builder

	if cmd.Long != "" {
		output.WriteString(cmd.Long)
		output.WriteString("\n\n")
	} else if cmd.Short != "" {
		output.WriteString(cmd.Short)
		output.WriteString("\n\n")
	}
	output.WriteString(cmd.UsageString())

	help := output.String()
	if ui.ShouldUseColor() {
		help = colorizeHelpOutput(help)
	}
	fmt.Fprint(cmd.OutOrStdout(), help)
}

// colorizeHelpOutput accents headers, command names and flags, and mutes
// defaults.
func colorizeHelpOutput(help string) string {
	result := groupHeaderRE.ReplaceAllStringFunc(help, func(match string) string {
		return ui.RenderAccent(strings.TrimSpace(match))
	})
	result = sectionHeaderRE.ReplaceAllStringFunc(result, ui.RenderAccent)

	result = cmdLineRE.ReplaceAllStringFunc(result, func(match string) string {
		parts := cmdLineRE.FindStringSubmatch(match)
		if len(parts) != 5 {
			return match
		}
		return parts[1] + ui.RenderCommand(parts[2]) + parts[3] + parts[4]
	})

	result = flagLineRE.ReplaceAllStringFunc(result, func(match string) string {
		parts := flagLineRE.FindStringSubmatch(match)
		if len(parts) < 6 {
			return match
		}
		indent, names, spacing, typeStr, desc := parts[1], parts[2], parts[3], parts[4], parts[5]
		desc = muteDefaults(desc)
		if typeStr != "" {
			return indent + ui.RenderCommand(names) + spacing + ui.RenderMuted(typeStr) + desc
		}
		return indent + ui.RenderCommand(names) + spacing + desc
	})

	return highlightEntryPoints(colorizeCommandRefs(result))
}

func muteDefaults(text string) string {
	return defaultRE.ReplaceAllStringFunc(text, ui.RenderMuted)
}

func highlightEntryPoints(text string) string {
	return entryRE.ReplaceAllStringFunc(text, ui.RenderAccent)
}

// colorizeCommandRefs styles quoted command references like 'init-config'.
func colorizeCommandRefs(text string) string {
	return cmdRefRE.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[1 : len(match)-1]
		return "'" + ui.RenderCommand(inner) + "'"
	})
}

func init() {
	rootCmd.SetHelpFunc(colorizedHelpFunc)
}
