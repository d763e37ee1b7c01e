package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/config"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
)

var (
	initForce    bool
	initSettings bool
)

var initConfigCmd = &cobra.Command{
	Use:     "init-config",
	GroupID: GroupConfig,
	Short:   "Write the example rules file",
	Long: `Write the bundled example rules to the rules file.

An existing file is kept unless --force is given. With --with-settings a
settings file holding the current settings is written as well.`,
	Args: cobra.NoArgs,
	RunE: runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initConfigCmd.Flags().BoolVar(&initSettings, "with-settings", false, "Also write a settings file")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	path := rulesPath()
	if err := config.WriteExampleRules(path, initForce); err != nil {
		if !errors.Is(err, config.ErrExists) {
			return err
		}
		style.PrintWarning(w, "%s already exists, use --force to overwrite", path)
	} else {
		style.PrintSuccess(w, "Wrote example rules to %s", path)
	}

	if !initSettings {
		return nil
	}

	settingsPath := flags.settings
	if settingsPath == "" {
		settingsPath = config.SettingsPath()
	}
	if _, err := os.Stat(settingsPath); err == nil && !initForce {
		style.PrintWarning(w, "%s already exists, use --force to overwrite", settingsPath)
		return nil
	}
	if err := config.SaveSettings(settingsPath, settings); err != nil {
		return err
	}
	style.PrintSuccess(w, "Wrote settings to %s", settingsPath)
	return nil
}
