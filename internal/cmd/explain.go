package cmd

import (
	_ "embed"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

//go:embed explain.md
var rulesGuide string

var explainNoPager bool

var explainCmd = &cobra.Command{
	Use:     "explain",
	GroupID: GroupConfig,
	Short:   "Explain the rules file format",
	Long: `Print a guide to the rules file: how window classes map to icons and
how window titles are shortened.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.ToPager(ui.RenderMarkdown(rulesGuide), ui.PagerOptions{NoPager: explainNoPager})
	},
}

func init() {
	explainCmd.Flags().BoolVar(&explainNoPager, "no-pager", false, "Disable pager output")
	rootCmd.AddCommand(explainCmd)
}
