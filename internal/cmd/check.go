package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/glyph"
	"gitlab.com/flib99/i3-workspace-names/internal/rules"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

// maxSuggestions bounds the icon names suggested per unknown icon.
const maxSuggestions = 3

var checkCmd = &cobra.Command{
	Use:     "check",
	GroupID: GroupConfig,
	Short:   "Report rules that name unknown icons",
	Long: `Look up every icon named in the rules file in the icon table.

An apps entry with an unknown icon shows up as N/A in workspace names. An
icon_replace entry with an unknown icon leaves the title unchanged and logs
a warning on every relabel. Cached icon names containing the unknown name
are suggested.

Exits with status 2 when any rule names an unknown icon.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// unknownIcon is a rule whose icon is missing from the icon table.
type unknownIcon struct {
	Section string
	Key     string
	Icon    string
	Similar []string
}

func runCheck(cmd *cobra.Command, _ []string) error {
	stderr := cmd.ErrOrStderr()
	rs, err := loadRules(stderr)
	if err != nil {
		return err
	}
	glyphs, err := loadGlyphs(cmd.Context(), stderr, settings)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	unknown := findUnknownIcons(rs, glyphs)
	if len(unknown) == 0 {
		style.PrintSuccess(w, "%d rules checked against %d icons",
			len(rs.Apps())+len(rs.IconReplacements()), glyphs.Len())
		return nil
	}

	for _, u := range unknown {
		style.PrintWarning(w, "%s[%q]: unknown icon %q", u.Section, u.Key, u.Icon)
		if len(u.Similar) > 0 {
			fmt.Fprintf(w, "  %s\n", ui.RenderMuted("similar: "+strings.Join(u.Similar, ", ")))
		}
	}
	return NewSilentExit(ExitUnknownIcons)
}

// findUnknownIcons returns the apps and icon_replace entries, in document
// order, whose icon name is not in glyphs.
func findUnknownIcons(rs *rules.RuleSet, glyphs *glyph.Table) []unknownIcon {
	names := glyphs.Names()

	var out []unknownIcon
	scan := func(section string, pairs []rules.Pair) {
		for _, p := range pairs {
			if _, ok := glyphs.Lookup(p.Value); ok {
				continue
			}
			out = append(out, unknownIcon{
				Section: section,
				Key:     p.Key,
				Icon:    p.Value,
				Similar: similarIcons(names, p.Value),
			})
		}
	}
	scan(rules.KeyApps, rs.Apps())
	scan(rules.KeyIconReplace, rs.IconReplacements())
	return out
}

// similarIcons returns up to maxSuggestions of the sorted names that contain
// icon, ignoring case.
func similarIcons(names []string, icon string) []string {
	needle := strings.ToLower(strings.TrimSpace(icon))
	if needle == "" {
		return nil
	}
	var out []string
	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		out = append(out, name)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
