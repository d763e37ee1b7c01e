package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/config"
	"gitlab.com/flib99/i3-workspace-names/internal/daemon"
	"gitlab.com/flib99/i3-workspace-names/internal/lock"
	"gitlab.com/flib99/i3-workspace-names/internal/renamelog"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

var (
	statusJSON   bool
	statusEvents int
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: GroupDaemon,
	Short:   "Show whether the renamer is running",
	Long: `Show the state of the renamer daemon and its most recent renames.

Exits with status 1 when no daemon is running, so scripts can test for it.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var relabelCmd = &cobra.Command{
	Use:     "relabel",
	GroupID: GroupDaemon,
	Short:   "Ask the running renamer to relabel now",
	Long: `Send the running renamer SIGUSR1, which makes it relabel every
workspace immediately.`,
	Args: cobra.NoArgs,
	RunE: runRelabel,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	statusCmd.Flags().IntVarP(&statusEvents, "events", "n", 5, "Number of journal events to show")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(relabelCmd)
}

// DaemonStatus is the status report of the renamer daemon.
type DaemonStatus struct {
	State  string            `json:"state"`
	Lock   *lock.LockInfo    `json:"lock,omitempty"`
	Daemon *daemon.State     `json:"daemon,omitempty"`
	Recent []renamelog.Event `json:"recent,omitempty"`
}

// collectStatus gathers the daemon status from runtimeDir.
func collectStatus(runtimeDir string, events int) (*DaemonStatus, error) {
	state, info, err := lock.New(runtimeDir).Status()
	if err != nil {
		return nil, err
	}
	st := &DaemonStatus{State: state.String(), Lock: info}

	if ds, err := daemon.LoadState(runtimeDir); err == nil {
		st.Daemon = ds
	}

	cfg := daemon.DefaultConfig(runtimeDir)
	recent, err := renamelog.Tail(cfg.JournalFile, events)
	if err != nil {
		return nil, err
	}
	st.Recent = recent
	return st, nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	st, err := collectStatus(config.RuntimeDir(), statusEvents)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if statusJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			return err
		}
	} else {
		printStatus(w, st)
	}

	if st.State != lock.Running.String() {
		return NewSilentExit(ExitNotRunning)
	}
	return nil
}

func printStatus(w io.Writer, st *DaemonStatus) {
	switch st.State {
	case lock.Running.String():
		fmt.Fprintf(w, "%s Renamer running", ui.RenderPassIcon())
		if st.Lock != nil {
			fmt.Fprintf(w, " (pid %d, since %s)", st.Lock.PID, st.Lock.AcquiredAt.Format(time.DateTime))
		}
		fmt.Fprintln(w)
	case lock.Stale.String():
		fmt.Fprintf(w, "%s Renamer not running (removed stale lock", ui.RenderWarnIcon())
		if st.Lock != nil {
			fmt.Fprintf(w, " of pid %d", st.Lock.PID)
		}
		fmt.Fprintln(w, ")")
	default:
		fmt.Fprintf(w, "%s Renamer not running\n", ui.RenderSkipIcon())
	}

	if ds := st.Daemon; ds != nil && !ds.StartedAt.IsZero() {
		fmt.Fprintf(w, "  %s %d passes, %d renamed, %d failed\n",
			ui.RenderMuted("stats:"), ds.RefreshCount, ds.Renamed, ds.Failed)
		if !ds.LastRefresh.IsZero() {
			fmt.Fprintf(w, "  %s %s\n", ui.RenderMuted("last relabel:"), ds.LastRefresh.Format(time.DateTime))
		}
		if ds.LastError != "" {
			fmt.Fprintf(w, "  %s %s\n", ui.RenderMuted("last error:"), ui.RenderFail(ds.LastError))
		}
	}

	if len(st.Recent) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", ui.RenderBold("Recent events"))
	for _, e := range st.Recent {
		fmt.Fprintf(w, "  %s %s\n", ui.RenderMuted(e.Timestamp.Format("15:04:05")), describeEvent(e))
	}
}

// describeEvent renders a journal event for humans.
func describeEvent(e renamelog.Event) string {
	switch e.Type {
	case renamelog.EventRename:
		return fmt.Sprintf("%d %s → %s", e.Workspace, style.Visible(e.From), ui.RenderLabel(style.Visible(e.To)))
	case renamelog.EventError:
		if e.From != "" {
			return fmt.Sprintf("%s %s: %s", ui.RenderFail("error"), style.Visible(e.From), e.Detail)
		}
		return fmt.Sprintf("%s %s", ui.RenderFail("error"), e.Detail)
	default:
		return fmt.Sprintf("%s %s", e.Type, e.Detail)
	}
}

func runRelabel(cmd *cobra.Command, _ []string) error {
	state, info, err := lock.New(config.RuntimeDir()).Status()
	if err != nil {
		return err
	}
	if state != lock.Running || info == nil {
		return fmt.Errorf("renamer is not running")
	}

	proc, err := os.FindProcess(info.PID)
	if err != nil {
		return fmt.Errorf("finding renamer process: %w", err)
	}
	if err := proc.Signal(daemon.RefreshSignal); err != nil {
		return fmt.Errorf("signaling renamer (pid %d): %w", info.PID, err)
	}
	style.PrintSuccess(cmd.OutOrStdout(), "Asked renamer (pid %d) to relabel", info.PID)
	return nil
}
