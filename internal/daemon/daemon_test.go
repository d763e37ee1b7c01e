package daemon

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/lock"
	"gitlab.com/flib99/i3-workspace-names/internal/renamelog"
	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

// fakeWM is an in-memory window manager. Renames update the workspace
// names it reports.
type fakeWM struct {
	mu          sync.Mutex
	workspaces  []label.Workspace
	renames     []string
	snapshots   int
	subscribes  int
	snapshotErr error
	renameErr   map[string]error
	events      chan wm.Event
}

func newFakeWM(workspaces ...label.Workspace) *fakeWM {
	return &fakeWM{workspaces: workspaces, events: make(chan wm.Event)}
}

func (f *fakeWM) Snapshot(ctx context.Context) ([]label.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	out := make([]label.Workspace, len(f.workspaces))
	copy(out, f.workspaces)
	return out, nil
}

func (f *fakeWM) Rename(ctx context.Context, oldName, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.renameErr[oldName]; err != nil {
		return err
	}
	for i := range f.workspaces {
		if f.workspaces[i].Name == oldName {
			f.workspaces[i].Name = newName
		}
	}
	f.renames = append(f.renames, oldName+" -> "+newName)
	return nil
}

// Events sends an initial event, then forwards f.events until ctx ends.
func (f *fakeWM) Events(ctx context.Context) *wm.Stream {
	f.mu.Lock()
	f.subscribes++
	f.mu.Unlock()

	ch := make(chan wm.Event)
	go func() {
		defer close(ch)
		select {
		case ch <- wm.Event{Change: wm.ChangeInitial}:
		case <-ctx.Done():
			return
		}
		for {
			select {
			case ev := <-f.events:
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return &wm.Stream{C: ch}
}

func (f *fakeWM) counts() (snapshots, renames int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots, len(f.renames)
}

// classLabeler labels a workspace "<num>: <classes>".
type classLabeler struct{}

func (classLabeler) Label(ws label.Workspace) string {
	var classes []string
	for _, w := range ws.Windows {
		classes = append(classes, w.Class)
	}
	if len(classes) == 0 {
		return strings.TrimSpace(ws.Name[:1])
	}
	return ws.Name[:1] + ": " + strings.Join(classes, " ")
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.JournalFile = filepath.Join(dir, "renames.log")
	cfg.Debounce = 10 * time.Millisecond
	cfg.ReconnectMin = time.Millisecond
	cfg.ReconnectMax = 4 * time.Millisecond
	return cfg
}

func testDaemon(t *testing.T, f *fakeWM) *Daemon {
	t.Helper()
	return New(testConfig(t), f, classLabeler{}, log.New(io.Discard, "", 0))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/run/user/1000/wsn")
	if cfg.Debounce != 50*time.Millisecond {
		t.Errorf("Debounce = %v, want 50ms", cfg.Debounce)
	}
	if cfg.ReconnectMin != time.Second || cfg.ReconnectMax != 30*time.Second {
		t.Errorf("reconnect bounds = %v..%v", cfg.ReconnectMin, cfg.ReconnectMax)
	}
	if cfg.LogFile != filepath.Join("/run/user/1000/wsn", "daemon.log") {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
}

func TestRefresh(t *testing.T) {
	f := newFakeWM(
		label.Workspace{Num: 1, Name: "1", Windows: []label.Window{{Class: "XTerm"}}},
		label.Workspace{Num: 2, Name: "2: Emacs", Windows: []label.Window{{Class: "Emacs"}}},
		label.Workspace{Num: 3, Name: "3: old", Windows: nil},
	)
	d := testDaemon(t, f)

	res, err := d.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	want := RefreshResult{Renamed: 2, Unchanged: 1}
	if res != want {
		t.Errorf("Refresh() = %+v, want %+v", res, want)
	}

	// A second pass has nothing to do.
	res, err = d.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res != (RefreshResult{Unchanged: 3}) {
		t.Errorf("second Refresh() = %+v", res)
	}

	events, err := renamelog.Read(d.config.JournalFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].To != "1: XTerm" || events[1].To != "3" {
		t.Errorf("journal = %+v", events)
	}
}

func TestRefreshRenameFailureContinues(t *testing.T) {
	f := newFakeWM(
		label.Workspace{Num: 1, Name: "1", Windows: []label.Window{{Class: "A"}}},
		label.Workspace{Num: 2, Name: "2", Windows: []label.Window{{Class: "B"}}},
	)
	f.renameErr = map[string]error{"1": errors.New("rejected")}
	d := testDaemon(t, f)

	res, err := d.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res != (RefreshResult{Renamed: 1, Failed: 1}) {
		t.Errorf("Refresh() = %+v", res)
	}

	errs, _ := renamelog.Read(d.config.JournalFile)
	errs = renamelog.FilterEvents(errs, renamelog.Filter{Type: renamelog.EventError})
	if len(errs) != 1 || errs[0].Detail != "rejected" {
		t.Errorf("journal errors = %+v", errs)
	}
}

func TestRefreshSnapshotError(t *testing.T) {
	f := newFakeWM()
	f.snapshotErr = errors.New("no socket")
	d := testDaemon(t, f)

	if _, err := d.Refresh(context.Background()); err == nil || !strings.Contains(err.Error(), "no socket") {
		t.Errorf("Refresh() error = %v", err)
	}
}

func TestRunRelabelsAndStops(t *testing.T) {
	f := newFakeWM(label.Workspace{Num: 1, Name: "1", Windows: []label.Window{{Class: "XTerm"}}})
	d := testDaemon(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitFor(t, func() bool { _, renames := f.counts(); return renames == 1 })

	// While running, a second daemon is refused.
	if _, err := lock.New(d.config.RuntimeDir).Acquire(); !errors.Is(err, lock.ErrLocked) {
		t.Errorf("second Acquire() error = %v, want ErrLocked", err)
	}
	state, err := LoadState(d.config.RuntimeDir)
	if err != nil {
		t.Fatal(err)
	}
	if !state.Running || state.RunID == "" {
		t.Errorf("state while running = %+v", state)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}

	state, err = LoadState(d.config.RuntimeDir)
	if err != nil {
		t.Fatal(err)
	}
	if state.Running {
		t.Error("state still running after stop")
	}
	if state.Renamed != 1 {
		t.Errorf("state.Renamed = %d, want 1", state.Renamed)
	}
	if st, _, _ := lock.New(d.config.RuntimeDir).Status(); st != lock.Unlocked {
		t.Errorf("lock state after stop = %v", st)
	}
}

func TestRunDebouncesBursts(t *testing.T) {
	f := newFakeWM(label.Workspace{Num: 1, Name: "1"})
	d := testDaemon(t, f)
	d.config.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Initial event relabels immediately.
	waitFor(t, func() bool { s, _ := f.counts(); return s == 1 })

	for i := 0; i < 5; i++ {
		f.events <- wm.Event{Change: wm.ChangeTitle}
	}
	waitFor(t, func() bool { s, _ := f.counts(); return s >= 2 })
	time.Sleep(150 * time.Millisecond)

	if s, _ := f.counts(); s != 2 {
		t.Errorf("snapshots = %d, want 2 (initial + one debounced)", s)
	}

	cancel()
	<-done
}

func TestRunWithoutDebounce(t *testing.T) {
	f := newFakeWM(label.Workspace{Num: 1, Name: "1"})
	d := testDaemon(t, f)
	d.config.Debounce = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitFor(t, func() bool { s, _ := f.counts(); return s == 1 })
	for i := 0; i < 3; i++ {
		f.events <- wm.Event{Change: wm.ChangeNew}
	}
	waitFor(t, func() bool { s, _ := f.counts(); return s == 4 })

	cancel()
	<-done
}

func TestRunLocked(t *testing.T) {
	f := newFakeWM()
	d := testDaemon(t, f)

	held := lock.New(d.config.RuntimeDir)
	if _, err := held.Acquire(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = held.Release() }()

	if err := d.Run(context.Background()); !errors.Is(err, lock.ErrLocked) {
		t.Errorf("Run() error = %v, want ErrLocked", err)
	}
}

// closingSource ends every stream immediately with no events.
type closingSource struct {
	mu    sync.Mutex
	count int
}

func (s *closingSource) Events(ctx context.Context) *wm.Stream {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	ch := make(chan wm.Event)
	close(ch)
	return &wm.Stream{C: ch}
}

func TestWatcherResubscribes(t *testing.T) {
	src := &closingSource{}
	cfg := testConfig(t)
	out := make(chan wm.Event, 1)
	w := newEventWatcher(src, cfg, log.New(io.Discard, "", 0), out)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	w.run(ctx)

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.count < 3 {
		t.Errorf("subscribed %d times, want repeated resubscription", src.count)
	}
}

func TestNewEventWatcherBounds(t *testing.T) {
	cfg := &Config{ReconnectMin: 0, ReconnectMax: 0}
	w := newEventWatcher(&closingSource{}, cfg, log.New(io.Discard, "", 0), nil)
	if w.min != time.Second || w.max != time.Second {
		t.Errorf("bounds = %v..%v, want 1s..1s", w.min, w.max)
	}
}

func TestRefreshResultString(t *testing.T) {
	got := RefreshResult{Renamed: 2, Unchanged: 1, Failed: 0}.String()
	if got != "renamed=2 unchanged=1 failed=0" {
		t.Errorf("String() = %q", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
