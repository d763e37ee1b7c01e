package cmd

import (
	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/icons"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
)

var updateIconsCmd = &cobra.Command{
	Use:     "update-icons",
	GroupID: GroupConfig,
	Short:   "Download the Font Awesome icon list",
	Long: `Download the Font Awesome icon metadata and rebuild the icon cache.

The cache maps icon names to glyphs. It is written atomically, so a running
renamer or a concurrent update never sees a partial file. A failed download
leaves the previous cache in place.`,
	Args: cobra.NoArgs,
	RunE: runUpdateIcons,
}

func init() {
	rootCmd.AddCommand(updateIconsCmd)
}

func runUpdateIcons(cmd *cobra.Command, _ []string) error {
	path := settings.IconCachePath()
	res, err := icons.Refresh(cmd.Context(), settings.IconURL, path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	style.PrintSuccess(w, "Cached %d icons in %s", len(res.Glyphs), path)
	if res.Skipped > 0 {
		style.PrintWarning(w, "Skipped %d entries without a usable code point", res.Skipped)
	}
	return nil
}
