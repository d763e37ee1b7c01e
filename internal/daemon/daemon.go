// Package daemon runs the workspace renamer: it relabels every workspace
// whenever i3 reports a window change, until told to stop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"gitlab.com/flib99/i3-workspace-names/internal/label"
	"gitlab.com/flib99/i3-workspace-names/internal/lock"
	"gitlab.com/flib99/i3-workspace-names/internal/renamelog"
	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

// Labeler computes a workspace's label.
type Labeler interface {
	Label(ws label.Workspace) string
}

// RefreshResult counts what one relabel pass did.
type RefreshResult struct {
	Renamed   int
	Unchanged int
	Failed    int
}

func (r RefreshResult) String() string {
	return fmt.Sprintf("renamed=%d unchanged=%d failed=%d", r.Renamed, r.Unchanged, r.Failed)
}

// Daemon relabels workspaces in response to window events.
type Daemon struct {
	config  *Config
	logger  *log.Logger
	wm      wm.Client
	labeler Labeler
	journal *renamelog.Journal
	lock    *lock.Lock

	mu    sync.Mutex
	state *State
}

// New creates a daemon. A nil logger discards log output.
func New(config *Config, client wm.Client, labeler Labeler, logger *log.Logger) *Daemon {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := &Daemon{
		config:  config,
		logger:  logger,
		wm:      client,
		labeler: labeler,
		lock:    lock.New(config.RuntimeDir),
		state:   &State{},
	}
	if config.JournalFile != "" {
		d.journal = renamelog.New(config.JournalFile)
	}
	return d
}

// Refresh relabels every workspace once. Workspaces whose label already
// matches are left alone; a failed rename is logged and the pass goes on.
func (d *Daemon) Refresh(ctx context.Context) (RefreshResult, error) {
	var res RefreshResult

	workspaces, err := d.wm.Snapshot(ctx)
	if err != nil {
		return res, fmt.Errorf("snapshot: %w", err)
	}

	for _, ws := range workspaces {
		name := d.labeler.Label(ws)
		if name == ws.Name {
			res.Unchanged++
			continue
		}
		if err := d.wm.Rename(ctx, ws.Name, name); err != nil {
			res.Failed++
			d.logger.Printf("renaming workspace %q to %q: %v", ws.Name, name, err)
			d.journalErr(d.journal.Error(ws.Num, ws.Name, err))
			continue
		}
		res.Renamed++
		d.journalErr(d.journal.Rename(ws.Num, ws.Name, name))
	}
	return res, nil
}

// Run holds the single-instance lock and relabels on window events until
// ctx is canceled or SIGINT/SIGTERM arrives. SIGUSR1 forces a relabel.
func (d *Daemon) Run(ctx context.Context) error {
	info, err := d.lock.Acquire()
	if err != nil {
		return err
	}
	defer func() {
		if err := d.lock.Release(); err != nil {
			d.logger.Printf("releasing lock: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, daemonSignals()...)
	defer signal.Stop(sigCh)

	d.mu.Lock()
	d.state = &State{Running: true, PID: info.PID, RunID: info.RunID, StartedAt: info.AcquiredAt}
	d.mu.Unlock()
	d.saveState()

	d.logger.Printf("daemon started (PID %d, run %s)", info.PID, info.RunID)
	d.journalErr(d.journal.Log(renamelog.EventStart, "run "+info.RunID))

	events := make(chan wm.Event, 16)
	watcher := newEventWatcher(d.wm, d.config, d.logger, events)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher.run(ctx)
	}()

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	stop := func(reason string) error {
		cancel()
		wg.Wait()
		d.logger.Printf("daemon stopped: %s", reason)
		d.journalErr(d.journal.Log(renamelog.EventStop, reason))
		d.mu.Lock()
		d.state.Running = false
		d.mu.Unlock()
		d.saveState()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return stop("context canceled")

		case sig := <-sigCh:
			if isRefreshSignal(sig) {
				d.logger.Printf("received %v, refreshing", sig)
				d.refresh(ctx)
				continue
			}
			return stop(fmt.Sprintf("received %v", sig))

		case ev := <-events:
			// (Re)connects relabel right away so the bar is never stale.
			if ev.Change == wm.ChangeInitial || d.config.Debounce <= 0 {
				d.refresh(ctx)
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(d.config.Debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(d.config.Debounce)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			d.refresh(ctx)
		}
	}
}

// refresh runs one pass and records it in the state file.
func (d *Daemon) refresh(ctx context.Context) {
	res, err := d.Refresh(ctx)

	d.mu.Lock()
	d.state.LastRefresh = time.Now()
	d.state.RefreshCount++
	d.state.Renamed += int64(res.Renamed)
	d.state.Failed += int64(res.Failed)
	if err != nil {
		d.state.LastError = err.Error()
	} else if res.Failed == 0 {
		d.state.LastError = ""
	}
	d.mu.Unlock()

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		return
	case err != nil:
		d.logger.Printf("refresh failed: %v", err)
		d.journalErr(d.journal.Log(renamelog.EventError, err.Error()))
	case res.Renamed > 0 || res.Failed > 0:
		d.logger.Printf("refresh: %s", res)
		d.journalErr(d.journal.Log(renamelog.EventRefresh, res.String()))
	}
	d.saveState()
}

// State returns a copy of the daemon's current state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.state
}

func (d *Daemon) saveState() {
	state := d.State()
	if err := SaveState(d.config.RuntimeDir, &state); err != nil {
		d.logger.Printf("saving state: %v", err)
	}
}

func (d *Daemon) journalErr(err error) {
	if err != nil {
		d.logger.Printf("writing journal: %v", err)
	}
}
