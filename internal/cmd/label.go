package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
)

var labelClass string

var labelCmd = &cobra.Command{
	Use:     "label <title>...",
	GroupID: GroupDiag,
	Short:   "Shorten a window title with the current rules",
	Long: `Run a window title through the title rules and print the result.

The words are joined with single spaces. With --class the icon that a
window of that class gets is printed before the title, as it would appear
in a workspace name.

Examples:
  i3-workspace-names label "Inbox - Mozilla Firefox"
  i3-workspace-names label --class kitty vim main.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLabel,
}

func init() {
	labelCmd.Flags().StringVar(&labelClass, "class", "", "Window class to show the icon for")
	rootCmd.AddCommand(labelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	rs, err := loadRules(stderr)
	if err != nil {
		return err
	}
	glyphs, err := loadGlyphs(ctx, stderr, settings)
	if err != nil {
		return err
	}

	title, err := label.NewTransformer(rs, glyphs).Transform(strings.Join(args, " "))
	if err != nil {
		if !errors.Is(err, label.ErrMissingGlyph) {
			return err
		}
		for _, line := range strings.Split(err.Error(), "\n") {
			style.PrintWarning(stderr, "%s", line)
		}
	}

	if labelClass != "" {
		title = label.NewLabeler(rs, glyphs).Icon(labelClass) + " " + title
	}
	fmt.Fprintln(cmd.OutOrStdout(), title)
	return nil
}
