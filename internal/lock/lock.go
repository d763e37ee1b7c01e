// Package lock keeps a single renaming daemon per user session.
//
// The lock lives in the runtime directory as two files:
//   - daemon.lock, held with an exclusive flock for the daemon's lifetime
//   - daemon.json, describing the holder (PID, start time, run ID, host)
//
// The flock is released by the kernel when the holder dies, so a leftover
// daemon.json without a held flock is stale and gets replaced.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gitlab.com/flib99/i3-workspace-names/internal/util"
)

// Common errors
var (
	ErrLocked      = errors.New("another daemon is running")
	ErrNotLocked   = errors.New("no daemon is running")
	ErrInvalidLock = errors.New("invalid lock file")
)

// File names inside the lock directory.
const (
	LockFile = "daemon.lock"
	InfoFile = "daemon.json"
)

// LockInfo describes the daemon holding the lock.
type LockInfo struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
	RunID      string    `json:"run_id"`
	Hostname   string    `json:"hostname,omitempty"`
}

// IsStale reports whether the owning process is gone.
func (l *LockInfo) IsStale() bool {
	return !processExists(l.PID)
}

// Lock is the daemon's single-instance lock in a directory.
type Lock struct {
	dir      string
	lockPath string
	infoPath string
	fl       *flock.Flock
	info     *LockInfo
}

// New creates a Lock in dir. Nothing is touched on disk until Acquire.
func New(dir string) *Lock {
	lockPath := filepath.Join(dir, LockFile)
	return &Lock{
		dir:      dir,
		lockPath: lockPath,
		infoPath: filepath.Join(dir, InfoFile),
		fl:       flock.New(lockPath),
	}
}

// Path returns the flock file path.
func (l *Lock) Path() string {
	return l.lockPath
}

// Acquire takes the lock and records this process as the holder.
// Returns ErrLocked when another daemon holds it.
func (l *Lock) Acquire() (*LockInfo, error) {
	if l.info != nil {
		return l.info, nil
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	locked, err := l.fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		if info, readErr := l.Read(); readErr == nil {
			return nil, fmt.Errorf("%w: PID %d (run %s, since %s)",
				ErrLocked, info.PID, info.RunID, info.AcquiredAt.Format(time.RFC3339))
		}
		return nil, ErrLocked
	}

	hostname, _ := os.Hostname()
	info := &LockInfo{
		PID:        os.Getpid(),
		AcquiredAt: time.Now(),
		RunID:      uuid.New().String(),
		Hostname:   hostname,
	}
	// Any existing info file is left over from a dead daemon.
	if err := util.AtomicWriteJSON(l.infoPath, info); err != nil {
		_ = l.fl.Unlock()
		return nil, fmt.Errorf("writing lock info: %w", err)
	}
	l.info = info
	return info, nil
}

// Release drops the lock and removes the info file. Releasing a lock that
// is not held is a no-op.
func (l *Lock) Release() error {
	if l.info == nil {
		return nil
	}
	l.info = nil
	if err := os.Remove(l.infoPath); err != nil && !os.IsNotExist(err) {
		_ = l.fl.Unlock()
		return fmt.Errorf("removing lock info: %w", err)
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// Held reports whether this Lock currently holds the flock.
func (l *Lock) Held() bool {
	return l.info != nil
}

// Read reads the holder info without taking the lock.
func (l *Lock) Read() (*LockInfo, error) {
	data, err := os.ReadFile(l.infoPath) //nolint:gosec // G304: path is inside the runtime dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLocked
		}
		return nil, fmt.Errorf("reading lock info: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLock, err)
	}
	return &info, nil
}

// State is the observed state of the daemon lock.
type State int

const (
	// Unlocked means no daemon holds the lock and no info file remains.
	Unlocked State = iota
	// Running means another process holds the flock.
	Running
	// Stale means an info file remains but nobody holds the flock.
	Stale
	// Self means this Lock holds the flock.
	Self
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "not running"
	case Running:
		return "running"
	case Stale:
		return "stale"
	case Self:
		return "running (this process)"
	default:
		return "unknown"
	}
}

// Status probes the lock. The returned info is nil when no info file exists.
// A stale info file is removed as a side effect.
func (l *Lock) Status() (State, *LockInfo, error) {
	if l.info != nil {
		return Self, l.info, nil
	}

	info, err := l.Read()
	if err != nil && !errors.Is(err, ErrNotLocked) && !errors.Is(err, ErrInvalidLock) {
		return Unlocked, nil, err
	}

	if _, statErr := os.Stat(l.lockPath); os.IsNotExist(statErr) {
		if info != nil {
			_ = os.Remove(l.infoPath)
			return Stale, info, nil
		}
		return Unlocked, nil, nil
	}

	probe := flock.New(l.lockPath)
	locked, err := probe.TryLock()
	if err != nil {
		return Unlocked, info, fmt.Errorf("probing lock: %w", err)
	}
	if !locked {
		return Running, info, nil
	}
	defer func() { _ = probe.Unlock() }()

	if info != nil {
		_ = os.Remove(l.infoPath)
		return Stale, info, nil
	}
	return Unlocked, nil, nil
}
