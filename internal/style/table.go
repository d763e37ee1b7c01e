package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Column defines a table column with name and width.
type Column struct {
	Name  string
	Width int
	Align Alignment
	Style lipgloss.Style
}

// Alignment specifies column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table renders aligned columns. Widths are measured in terminal cells, so
// wide glyphs and ANSI styling line up.
type Table struct {
	columns     []Column
	rows        [][]string
	headerSep   bool
	indent      string
	headerStyle lipgloss.Style
}

// NewTable creates a new table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{
		columns:     columns,
		headerSep:   true,
		indent:      "  ",
		headerStyle: Bold,
	}
}

// SetIndent sets the left indent for the table.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// SetHeaderSeparator enables/disables the header separator line.
func (t *Table) SetHeaderSeparator(enabled bool) *Table {
	t.headerSep = enabled
	return t
}

// AddRow adds a row of values to the table.
func (t *Table) AddRow(values ...string) *Table {
	for len(values) < len(t.columns) {
		values = append(values, "")
	}
	t.rows = append(t.rows, values)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table string.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(t.indent)
	for i, col := range t.columns {
		sb.WriteString(pad(t.headerStyle.Render(col.Name), col.Name, col.Width, col.Align))
		if i < len(t.columns)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")

	if t.headerSep {
		sb.WriteString(t.indent)
		totalWidth := 0
		for i, col := range t.columns {
			totalWidth += col.Width
			if i < len(t.columns)-1 {
				totalWidth++
			}
		}
		sb.WriteString(Dim.Render(strings.Repeat("─", totalWidth)))
		sb.WriteString("\n")
	}

	for _, row := range t.rows {
		sb.WriteString(t.indent)
		for i, col := range t.columns {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			plain := ansi.Strip(val)
			if col.Width > 0 && ansi.StringWidth(plain) > col.Width {
				plain = ansi.Truncate(plain, col.Width, "…")
				val = plain
			}
			if hasStyle(col.Style) {
				val = col.Style.Render(val)
			}
			sb.WriteString(pad(val, plain, col.Width, col.Align))
			if i < len(t.columns)-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// hasStyle reports whether s sets a foreground color.
func hasStyle(s lipgloss.Style) bool {
	_, none := s.GetForeground().(lipgloss.NoColor)
	return !none
}

// pad pads styled to width using the cell width of plain.
func pad(styled, plain string, width int, align Alignment) string {
	w := ansi.StringWidth(plain)
	if w >= width {
		return styled
	}
	padding := width - w

	switch align {
	case AlignRight:
		return strings.Repeat(" ", padding) + styled
	case AlignCenter:
		left := padding / 2
		return strings.Repeat(" ", left) + styled + strings.Repeat(" ", padding-left)
	default:
		return styled + strings.Repeat(" ", padding)
	}
}

// Visible makes leading and trailing spaces of a label visible, since they
// are significant in workspace names.
func Visible(s string) string {
	return `"` + s + `"`
}
