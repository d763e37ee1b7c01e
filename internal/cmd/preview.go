package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"gitlab.com/flib99/i3-workspace-names/internal/config"
	"gitlab.com/flib99/i3-workspace-names/internal/daemon"
	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/tui/watch"
	"gitlab.com/flib99/i3-workspace-names/internal/ui"
	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

var (
	previewApply bool
	previewJSON  bool
)

var previewCmd = &cobra.Command{
	Use:     "preview",
	GroupID: GroupDiag,
	Short:   "Show the label each workspace would get",
	Long: `Compute the label of every workspace once and print it next to the
current name, without renaming anything.

Rows marked ● would change. With --apply the renames are performed, which
is one pass of what the daemon does on every window event.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewApply, "apply", false, "Rename the workspaces")
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(previewCmd)
}

// previewRow is the JSON form of a preview row.
type previewRow struct {
	Num     int64  `json:"num"`
	Current string `json:"current"`
	Label   string `json:"label"`
	Changed bool   `json:"changed"`
}

func runPreview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	labeler, err := loadLabeler(ctx, cmd.ErrOrStderr(), settings, nil)
	if err != nil {
		return err
	}
	client := newClient(settings.SocketPath)

	rows, err := previewRows(ctx, client, labeler)
	if err != nil {
		return err
	}

	if previewJSON {
		out := make([]previewRow, len(rows))
		for i, r := range rows {
			out[i] = previewRow{Num: r.Num, Current: r.Current, Label: r.Label, Changed: r.Changed()}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printPreview(w, rows, labeler.ShowTitles())
	}

	if !previewApply {
		return nil
	}
	res, err := applyLabels(ctx, client, labeler)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d renames failed", res.Failed, res.Renamed+res.Failed)
	}
	if !previewJSON {
		style.PrintSuccess(w, "Applied: %s", res)
	}
	return nil
}

// previewRows computes the label of every workspace.
func previewRows(ctx context.Context, tree wm.TreeSource, labeler *label.Labeler) ([]watch.Row, error) {
	workspaces, err := tree.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading workspaces: %w", err)
	}
	labels := labeler.LabelAll(workspaces)
	rows := make([]watch.Row, len(workspaces))
	for i, ws := range workspaces {
		rows[i] = watch.Row{Num: ws.Num, Current: ws.Name, Label: labels[i]}
	}
	return rows, nil
}

// applyLabels runs one relabel pass, recording it in the rename journal.
func applyLabels(ctx context.Context, client wm.Client, labeler daemon.Labeler) (daemon.RefreshResult, error) {
	cfg := daemon.DefaultConfig(config.RuntimeDir())
	return daemon.New(cfg, client, labeler, nil).Refresh(ctx)
}

func printPreview(w io.Writer, rows []watch.Row, showTitles bool) {
	if len(rows) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("No workspaces."))
		return
	}

	width := ui.TerminalWidth(100, 160)
	labelWidth := (width - 4 - 1 - 6) / 2
	if labelWidth < 12 {
		labelWidth = 12
	}

	tbl := style.NewTable(
		style.Column{Name: "NUM", Width: 4, Align: style.AlignRight},
		style.Column{Name: "", Width: 1, Style: style.Warning},
		style.Column{Name: "CURRENT", Width: labelWidth},
		style.Column{Name: "LABEL", Width: labelWidth, Style: style.Label},
	)

	changed := 0
	for _, r := range rows {
		marker := ""
		if r.Changed() {
			marker = "●"
			changed++
		}
		tbl.AddRow(strconv.FormatInt(r.Num, 10), marker, style.Visible(r.Current), style.Visible(r.Label))
	}
	fmt.Fprint(w, tbl.Render())
	titles := "titles hidden"
	if showTitles {
		titles = "titles shown"
	}
	fmt.Fprintf(w, "\n%s\n", ui.RenderMuted(fmt.Sprintf("%d of %d workspaces would change (%s)", changed, len(rows), titles)))
}
