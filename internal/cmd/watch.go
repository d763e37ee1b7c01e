package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/tui/watch"
	"gitlab.com/flib99/i3-workspace-names/internal/ui"
	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

var (
	watchPlain   bool
	watchNoApply bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: GroupDiag,
	Short:   "Live view of the workspace labels",
	Long: `Show the label of every workspace and update it on each window event.

Nothing is renamed unless you press 'a'. Press 't' to toggle window titles
and '?' for all key bindings.

Outside a terminal, or with --plain, the preview table is printed again on
every event instead.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "Print tables instead of the interactive view")
	watchCmd.Flags().BoolVar(&watchNoApply, "no-apply", false, "Disable the apply key")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stderr := cmd.ErrOrStderr()
	rs, err := loadRules(stderr)
	if err != nil {
		return err
	}
	glyphs, err := loadGlyphs(ctx, stderr, settings)
	if err != nil {
		return err
	}
	labelers := map[bool]*label.Labeler{
		false: label.NewLabeler(rs, glyphs, label.WithTitles(false)),
		true:  label.NewLabeler(rs, glyphs, label.WithTitles(true)),
	}

	client := newClient(settings.SocketPath)
	preview := func(ctx context.Context, showTitles bool) ([]watch.Row, error) {
		return previewRows(ctx, client, labelers[showTitles])
	}
	var apply watch.Applier
	if !watchNoApply {
		apply = func(ctx context.Context, showTitles bool) (string, error) {
			res, err := applyLabels(ctx, client, labelers[showTitles])
			return res.String(), err
		}
	}

	stream := client.Events(ctx)

	if watchPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runWatchPlain(ctx, cmd, stream, preview)
	}

	m := watch.NewModel(ctx, preview, apply, settings.ShowTitles)
	m.SetEventChannel(stream.C)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// runWatchPlain prints the preview on every event until interrupted or the
// event stream ends.
func runWatchPlain(ctx context.Context, cmd *cobra.Command, stream *wm.Stream, preview watch.Previewer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-stream.C:
			if !ok {
				return stream.Err()
			}
			rows, err := preview(ctx, settings.ShowTitles)
			if err != nil {
				style.PrintWarning(cmd.ErrOrStderr(), "%v", err)
				continue
			}
			fmt.Fprintf(w, "%s\n", ui.RenderMuted("── "+ev.Change+" "+ev.Window))
			printPreview(w, rows, settings.ShowTitles)
		}
	}
}
