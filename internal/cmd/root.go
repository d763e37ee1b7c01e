// Package cmd implements the i3-workspace-names command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/config"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

// Command groups shown in help output.
const (
	GroupDaemon = "daemon"
	GroupConfig = "config"
	GroupDiag   = "diag"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	config      string
	settings    string
	cacheDir    string
	icons       string
	customIcons string
	socket      string
	showTitles  bool
}

var (
	flags       globalFlags
	updateIcons bool

	// settings is resolved before any command runs.
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "i3-workspace-names",
	Short: "Name i3 workspaces after the windows they contain",
	Long: `Dynamically rename i3 and sway workspaces depending on their windows.

Each workspace becomes "<num>: <icons>", one Font Awesome glyph per window,
optionally followed by a shortened window title. Which glyph a window gets
is set in the rules file (see 'init-config' and 'explain').

Without a subcommand the renamer runs as a daemon (start here).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: resolveSettings,
	RunE:              runRoot,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupDaemon, Title: "Daemon:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Use a custom rules file")
	pf.StringVar(&flags.settings, "settings", "", "Use a custom settings file")
	pf.StringVarP(&flags.cacheDir, "cache", "x", "", "Cache directory for icons")
	pf.StringVarP(&flags.icons, "icons", "i", "", "Use a custom icon cache file")
	pf.StringVar(&flags.customIcons, "custom-icons", "", "JSON file of icon name to glyph overrides")
	pf.StringVar(&flags.socket, "socket", "", "i3 or sway IPC socket path")
	pf.BoolVarP(&flags.showTitles, "show-titles", "s", false, "Append shortened window titles to the icons")

	rootCmd.Flags().BoolVarP(&updateIcons, "update-icons", "u", false, "Update the icon cache from Font Awesome and exit")
	addDaemonFlags(rootCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := IsSilentExit(err); ok {
			return code
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}

func runRoot(cmd *cobra.Command, args []string) error {
	if updateIcons {
		return runUpdateIcons(cmd, args)
	}
	return runDaemon(cmd, args)
}

// resolveSettings loads the settings file and lays explicitly set flags
// over it.
func resolveSettings(cmd *cobra.Command, _ []string) error {
	path := flags.settings
	if path == "" {
		path = config.SettingsPath()
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		return err
	}
	applyFlags(cmd, s)

	settings = s
	ui.InitTheme(s.Theme)
	ui.ApplyThemeMode()
	return nil
}

// applyFlags copies the flags the user set onto s.
func applyFlags(cmd *cobra.Command, s *config.Settings) {
	f := cmd.Flags()
	if f.Changed("cache") {
		s.CacheDir = flags.cacheDir
	}
	if f.Changed("icons") {
		s.IconCache = flags.icons
	}
	if f.Changed("custom-icons") {
		s.CustomIcons = flags.customIcons
	}
	if f.Changed("socket") {
		s.SocketPath = flags.socket
	}
	if f.Changed("show-titles") {
		s.ShowTitles = flags.showTitles
	}
}

// rulesPath is the rules file in effect.
func rulesPath() string {
	if flags.config != "" {
		return flags.config
	}
	return config.RulesPath()
}
