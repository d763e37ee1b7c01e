// Package renamelog keeps a human-readable journal of what the daemon did
// to workspace names.
package renamelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EventType is the kind of journal entry.
type EventType string

const (
	// EventStart marks a daemon start.
	EventStart EventType = "start"
	// EventStop marks a daemon stop.
	EventStop EventType = "stop"
	// EventRename records a workspace rename.
	EventRename EventType = "rename"
	// EventError records a failed rename or labeling problem.
	EventError EventType = "error"
	// EventRefresh summarizes one relabel pass.
	EventRefresh EventType = "refresh"
)

// NoWorkspace is the workspace number of entries not tied to a workspace.
const NoWorkspace = -1

const timeLayout = "2006-01-02 15:04:05"

// Event is a single journal entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Workspace int64     `json:"workspace"`        // workspace number, NoWorkspace if none
	From      string    `json:"from,omitempty"`   // old name for renames
	To        string    `json:"to,omitempty"`     // new name for renames
	Detail    string    `json:"detail,omitempty"` // free text: error message, counts, run ID
}

// Journal appends events to a log file. It is safe for concurrent use.
type Journal struct {
	path string
	mu   sync.Mutex
}

// New creates a Journal writing to path.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes one event. A nil Journal discards everything.
func (j *Journal) Append(e Event) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(e) + "\n"); err != nil {
		return fmt.Errorf("writing journal line: %w", err)
	}
	return nil
}

// Rename records a workspace rename.
func (j *Journal) Rename(num int64, from, to string) error {
	return j.Append(Event{Timestamp: time.Now(), Type: EventRename, Workspace: num, From: from, To: to})
}

// Error records a problem with one workspace.
func (j *Journal) Error(num int64, name string, err error) error {
	return j.Append(Event{Timestamp: time.Now(), Type: EventError, Workspace: num, From: name, Detail: err.Error()})
}

// Log records an event not tied to a workspace.
func (j *Journal) Log(t EventType, detail string) error {
	return j.Append(Event{Timestamp: time.Now(), Type: t, Workspace: NoWorkspace, Detail: detail})
}

// formatLine renders an event.
// Format: 2026-10-18 15:30:45 [rename] 2 "2" -> "2: A xterm  "
func formatLine(e Event) string {
	ts := e.Timestamp.Format(timeLayout)
	ws := "-"
	if e.Workspace != NoWorkspace {
		ws = strconv.FormatInt(e.Workspace, 10)
	}

	var detail string
	switch e.Type {
	case EventRename:
		detail = fmt.Sprintf("%q -> %q", e.From, e.To)
	case EventError:
		if e.From != "" {
			detail = fmt.Sprintf("%q: %s", e.From, e.Detail)
		} else {
			detail = e.Detail
		}
	default:
		detail = e.Detail
	}

	return strings.TrimRight(fmt.Sprintf("%s [%s] %s %s", ts, e.Type, ws, detail), " ")
}

// Read returns every parseable event in the journal at path. A missing
// journal has no events.
func Read(path string) ([]Event, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is the daemon's own journal
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	var events []Event
	for _, line := range strings.Split(string(content), "\n") {
		if line == "" {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// Tail returns the last n events of the journal at path.
func Tail(path string, n int) ([]Event, error) {
	events, err := Read(path)
	if err != nil {
		return nil, err
	}
	if n < 0 || len(events) <= n {
		return events, nil
	}
	return events[len(events)-n:], nil
}

// parseLine is the inverse of formatLine.
func parseLine(line string) (Event, error) {
	var e Event

	if len(line) < len(timeLayout)+1 {
		return e, fmt.Errorf("line too short")
	}
	ts, err := time.ParseInLocation(timeLayout, line[:len(timeLayout)], time.Local)
	if err != nil {
		return e, fmt.Errorf("parsing timestamp: %w", err)
	}
	e.Timestamp = ts

	rest := line[len(timeLayout)+1:]
	if !strings.HasPrefix(rest, "[") {
		return e, fmt.Errorf("missing event type")
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return e, fmt.Errorf("unclosed bracket")
	}
	e.Type = EventType(rest[1:end])

	rest = strings.TrimPrefix(rest[end+1:], " ")
	ws, detail, _ := strings.Cut(rest, " ")
	switch ws {
	case "-":
		e.Workspace = NoWorkspace
	case "":
		return e, fmt.Errorf("missing workspace")
	default:
		n, err := strconv.ParseInt(ws, 10, 64)
		if err != nil {
			return e, fmt.Errorf("parsing workspace: %w", err)
		}
		e.Workspace = n
	}

	switch e.Type {
	case EventRename:
		if from, to, ok := splitRename(detail); ok {
			e.From, e.To = from, to
		}
	case EventError:
		e.Detail = detail
		if q, err := strconv.QuotedPrefix(detail); err == nil && strings.HasPrefix(detail[len(q):], ": ") {
			if from, err := strconv.Unquote(q); err == nil {
				e.From, e.Detail = from, detail[len(q)+2:]
			}
		}
	default:
		e.Detail = detail
	}
	return e, nil
}

// splitRename parses `"old" -> "new"`.
func splitRename(s string) (string, string, bool) {
	from, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", false
	}
	rest := strings.TrimPrefix(s[len(from):], " -> ")
	from, err = strconv.Unquote(from)
	if err != nil {
		return "", "", false
	}
	to, err := strconv.Unquote(rest)
	if err != nil {
		return "", "", false
	}
	return from, to, true
}

// Filter selects events.
type Filter struct {
	Type  EventType // empty for all
	Since time.Time // zero for all
}

// FilterEvents applies f to events.
func FilterEvents(events []Event, f Filter) []Event {
	var result []Event
	for _, e := range events {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		result = append(result, e)
	}
	return result
}
