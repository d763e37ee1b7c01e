// Package watch is a live terminal view of the labels the renamer would
// give each workspace, updated on every window event.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

// maxEvents is how many recent window events the view keeps.
const maxEvents = 5

// Row is one workspace in the preview.
type Row struct {
	Num     int64
	Current string
	Label   string
}

// Changed reports whether applying the label would rename the workspace.
func (r Row) Changed() bool {
	return r.Current != r.Label
}

// Previewer computes the preview rows.
type Previewer func(ctx context.Context, showTitles bool) ([]Row, error)

// Applier renames workspaces to their computed labels and returns a short
// summary.
type Applier func(ctx context.Context, showTitles bool) (string, error)

// Model is the bubbletea model for the watch TUI.
type Model struct {
	width  int
	height int

	table viewport.Model

	rows       []Row
	events     []wm.Event
	err        error
	status     string
	updated    time.Time
	showTitles bool

	keys     KeyMap
	help     help.Model
	showHelp bool

	preview Previewer
	apply   Applier
	ctx     context.Context

	eventChan <-chan wm.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewModel creates a watch model. apply may be nil to disable applying.
func NewModel(ctx context.Context, preview Previewer, apply Applier, showTitles bool) *Model {
	h := help.New()
	h.ShowAll = false

	return &Model{
		table:      viewport.New(0, 0),
		showTitles: showTitles,
		keys:       DefaultKeyMap(),
		help:       h,
		preview:    preview,
		apply:      apply,
		ctx:        ctx,
		done:       make(chan struct{}),
	}
}

// SetEventChannel sets the channel of window events that trigger a
// refresh.
func (m *Model) SetEventChannel(ch <-chan wm.Event) {
	m.eventChan = ch
}

type previewMsg struct {
	rows []Row
	err  error
	at   time.Time
}

type eventMsg wm.Event

type applyMsg struct {
	summary string
	err     error
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForEvents(),
		m.refresh(),
		tea.SetWindowTitle("i3-workspace-names watch"),
	)
}

func (m *Model) listenForEvents() tea.Cmd {
	if m.eventChan == nil {
		return nil
	}
	eventChan := m.eventChan
	done := m.done
	return func() tea.Msg {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			return eventMsg(ev)
		case <-done:
			return nil
		}
	}
}

func (m *Model) refresh() tea.Cmd {
	preview, ctx, titles := m.preview, m.ctx, m.showTitles
	return func() tea.Msg {
		rows, err := preview(ctx, titles)
		return previewMsg{rows: rows, err: err, at: time.Now()}
	}
}

func (m *Model) applyLabels() tea.Cmd {
	if m.apply == nil {
		return nil
	}
	apply, ctx, titles := m.apply, m.ctx, m.showTitles
	return func() tea.Msg {
		summary, err := apply(ctx, titles)
		return applyMsg{summary: summary, err: err}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()

	case eventMsg:
		m.addEvent(wm.Event(msg))
		cmds = append(cmds, m.listenForEvents(), m.refresh())

	case previewMsg:
		m.err = msg.err
		if msg.err == nil {
			m.rows = msg.rows
			m.updated = msg.at
		}
		m.table.SetContent(m.renderTable())

	case applyMsg:
		if msg.err != nil {
			m.status = "apply failed: " + msg.err.Error()
		} else {
			m.status = msg.summary
		}
		cmds = append(cmds, m.refresh())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeOnce.Do(func() { close(m.done) })
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.updateViewportSize()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, m.keys.Titles):
		m.showTitles = !m.showTitles
		return m, m.refresh()

	case key.Matches(msg, m.keys.Apply):
		if m.apply == nil {
			m.status = "apply disabled"
			return m, nil
		}
		m.status = "applying..."
		return m, m.applyLabels()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) addEvent(ev wm.Event) {
	m.events = append(m.events, ev)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *Model) updateViewportSize() {
	// header (2) + events block + status (1) + help
	reserved := 2 + maxEvents + 2 + 1 + 1
	if m.showHelp {
		reserved += 3
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	w := m.width
	if w < 20 {
		w = 20
	}
	m.table.Width = w
	m.table.Height = h
	m.table.SetContent(m.renderTable())
}

// View renders the TUI
func (m *Model) View() string {
	return m.render()
}
