package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/config"
	"gitlab.com/flib99/i3-workspace-names/internal/daemon"
	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/lock"
)

var (
	runForeground bool
	runDebounce   time.Duration
)

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: GroupDaemon,
	Short:   "Run the workspace renamer",
	Long: `Run the workspace renamer until interrupted.

Every workspace is relabeled at start and again whenever a window opens,
closes, moves or changes its title. Bursts of events are coalesced with
--debounce. Send SIGUSR1 to force a relabel; SIGINT or SIGTERM stops it.

Only one renamer runs per user. The log goes to daemon.log in the runtime
directory unless --foreground is given.`,
	RunE: runDaemon,
}

func init() {
	addDaemonFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

// addDaemonFlags registers the daemon flags on cmd. The root command shares
// them so that running without a subcommand behaves like 'run'.
func addDaemonFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&runForeground, "foreground", "f", false, "Log to stderr instead of the daemon log")
	cmd.Flags().DurationVar(&runDebounce, "debounce", config.DefaultDebounce, "Quiet period before relabeling (0 relabels on every event)")
}

// daemonConfig derives the daemon configuration from the settings and the
// flags of cmd.
func daemonConfig(cmd *cobra.Command) *daemon.Config {
	cfg := daemon.DefaultConfig(config.RuntimeDir())
	cfg.Debounce = settings.Debounce.Duration
	if cmd.Flags().Changed("debounce") {
		cfg.Debounce = runDebounce
	}
	return cfg
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if runDebounce < 0 {
		return fmt.Errorf("--debounce must not be negative")
	}
	cfg := daemonConfig(cmd)

	var logger *log.Logger
	if runForeground {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	} else {
		l, f, err := daemon.OpenLog(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = l
	}

	onError := func(ws label.Workspace, win label.Window, err error) {
		logger.Printf("workspace %q, window %q: %v", ws.Name, win.Class, err)
	}
	labeler, err := loadLabeler(cmd.Context(), cmd.ErrOrStderr(), settings, onError)
	if err != nil {
		return err
	}

	d := daemon.New(cfg, newClient(settings.SocketPath), labeler, logger)
	if err := d.Run(cmd.Context()); err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return fmt.Errorf("%w (check with 'i3-workspace-names status')", err)
		}
		return err
	}
	return nil
}
