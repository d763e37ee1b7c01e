package watch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/flib99/i3-workspace-names/internal/style"
	"gitlab.com/flib99/i3-workspace-names/internal/ui"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorAccent)

	dimStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	changedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarn)

	errorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorFail)
)

func (m *Model) render() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Workspace labels"))
	titles := "titles off"
	if m.showTitles {
		titles = "titles on"
	}
	meta := titles
	if !m.updated.IsZero() {
		meta += " · updated " + m.updated.Format("15:04:05")
	}
	b.WriteString("  " + dimStyle.Render(meta) + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("Recent window events"))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(dimStyle.Render("  none yet") + "\n")
	}
	for _, ev := range m.events {
		line := "  " + ev.Change
		if ev.Window != "" {
			line += "  " + ev.Window
		}
		b.WriteString(line + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderTable renders the preview rows.
func (m *Model) renderTable() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("No workspaces.")
	}

	labelWidth := 30
	if m.width > 0 {
		// num (4) + marker (2) + two label columns + separators
		labelWidth = (m.width - 4 - 2 - 4) / 2
		if labelWidth < 10 {
			labelWidth = 10
		}
	}

	tbl := style.NewTable(
		style.Column{Name: "NUM", Width: 4, Align: style.AlignRight},
		style.Column{Name: "", Width: 1},
		style.Column{Name: "CURRENT", Width: labelWidth},
		style.Column{Name: "LABEL", Width: labelWidth, Style: style.Label},
	).SetIndent("")

	for _, r := range m.rows {
		marker := " "
		if r.Changed() {
			marker = changedStyle.Render("●")
		}
		tbl.AddRow(strconv.FormatInt(r.Num, 10), marker, style.Visible(r.Current), style.Visible(r.Label))
	}
	return tbl.Render()
}
