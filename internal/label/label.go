package label

import (
	"strconv"
	"strings"

	"gitlab.com/flib99/i3-workspace-names/internal/glyph"
	"gitlab.com/flib99/i3-workspace-names/internal/rules"
)

// MissingIcon is shown for a mapped window class whose icon has no glyph.
const MissingIcon = "N/A"

// Window is one leaf window of a workspace.
type Window struct {
	Class string
	Title string
}

// Workspace is one workspace of a window tree snapshot. Windows are in
// tree order.
type Workspace struct {
	Num     int64
	Name    string
	Windows []Window
}

// ErrorFunc observes recoverable errors hit while labeling one window.
type ErrorFunc func(ws Workspace, win Window, err error)

// Labeler computes workspace labels.
type Labeler struct {
	rules       *rules.RuleSet
	glyphs      *glyph.Table
	transformer *Transformer
	showTitles  bool
	onError     ErrorFunc
}

// Option configures a Labeler.
type Option func(*Labeler)

// WithTitles includes each window's transformed title in the label.
func WithTitles(show bool) Option {
	return func(l *Labeler) { l.showTitles = show }
}

// WithErrorFunc installs an observer for per-window errors.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(l *Labeler) { l.onError = fn }
}

// NewLabeler returns a Labeler for a rule set and glyph table.
func NewLabeler(rs *rules.RuleSet, glyphs *glyph.Table, opts ...Option) *Labeler {
	l := &Labeler{
		rules:       rs,
		glyphs:      glyphs,
		transformer: NewTransformer(rs, glyphs),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ShowTitles reports whether titles are part of the label.
func (l *Labeler) ShowTitles() bool {
	return l.showTitles
}

// Icon returns the placeholder shown for a window class: the glyph of its
// mapped icon, MissingIcon when the icon is unknown, or the raw class
// followed by a space when the class is not mapped at all.
func (l *Labeler) Icon(class string) string {
	name, ok := l.rules.AppIcon(class)
	if !ok {
		return class + " "
	}
	if g, ok := l.glyphs.Lookup(name); ok {
		return g
	}
	return MissingIcon
}

// Label returns the new name for ws: its number, then ": " and one segment
// per window when it has any.
func (l *Labeler) Label(ws Workspace) string {
	var windows strings.Builder
	for _, win := range ws.Windows {
		windows.WriteString(l.Icon(win.Class))
		if l.showTitles {
			title, err := l.transformer.Transform(win.Title)
			if err != nil && l.onError != nil {
				l.onError(ws, win, err)
			}
			windows.WriteString(" ")
			windows.WriteString(title)
		}
		windows.WriteString(" ")
	}

	name := strconv.FormatInt(ws.Num, 10)
	if windows.Len() > 0 {
		name += ": " + windows.String()
	}
	return name
}

// LabelAll labels every workspace of a snapshot, in order.
func (l *Labeler) LabelAll(workspaces []Workspace) []string {
	out := make([]string, len(workspaces))
	for i, ws := range workspaces {
		out[i] = l.Label(ws)
	}
	return out
}

// Label is a one-shot helper around NewLabeler.
func Label(ws Workspace, rs *rules.RuleSet, glyphs *glyph.Table, showTitles bool) string {
	return NewLabeler(rs, glyphs, WithTitles(showTitles)).Label(ws)
}
