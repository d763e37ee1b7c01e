package daemon

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/flib99/i3-workspace-names/internal/util"
)

// File names inside the runtime directory.
const (
	LogFileName     = "daemon.log"
	JournalFileName = "renames.log"
	stateFileName   = "state.json"
)

// Config holds daemon settings.
type Config struct {
	// RuntimeDir holds the lock and state files.
	RuntimeDir string
	// LogFile receives the daemon log when not running in the foreground.
	LogFile string
	// JournalFile receives the rename journal. Empty disables it.
	JournalFile string
	// Debounce is the quiet period after a window event before relabeling.
	// Zero relabels on every event.
	Debounce time.Duration
	// ReconnectMin and ReconnectMax bound the delay between IPC
	// resubscription attempts.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// DefaultConfig returns the daemon configuration for runtimeDir.
func DefaultConfig(runtimeDir string) *Config {
	return &Config{
		RuntimeDir:   runtimeDir,
		LogFile:      filepath.Join(runtimeDir, LogFileName),
		JournalFile:  filepath.Join(runtimeDir, JournalFileName),
		Debounce:     50 * time.Millisecond,
		ReconnectMin: time.Second,
		ReconnectMax: 30 * time.Second,
	}
}

// State is the daemon's persisted runtime state, read by the status command.
type State struct {
	Running      bool      `json:"running"`
	PID          int       `json:"pid"`
	RunID        string    `json:"run_id,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	LastRefresh  time.Time `json:"last_refresh,omitempty"`
	RefreshCount int64     `json:"refresh_count"`
	Renamed      int64     `json:"renamed"`
	Failed       int64     `json:"failed"`
	LastError    string    `json:"last_error,omitempty"`
}

// StateFile returns the state file path in runtimeDir.
func StateFile(runtimeDir string) string {
	return filepath.Join(runtimeDir, stateFileName)
}

// LoadState reads the state file in runtimeDir. A missing file yields an
// empty State.
func LoadState(runtimeDir string) (*State, error) {
	data, err := os.ReadFile(StateFile(runtimeDir)) //nolint:gosec // G304: path is inside the runtime dir
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	return &state, nil
}

// SaveState writes state to runtimeDir, creating it if needed.
func SaveState(runtimeDir string, state *State) error {
	if err := os.MkdirAll(runtimeDir, 0755); err != nil {
		return fmt.Errorf("creating runtime directory: %w", err)
	}
	return util.AtomicWriteJSON(StateFile(runtimeDir), state)
}

// OpenLog opens the daemon log file for appending and returns a logger
// writing to it. The caller closes the file.
func OpenLog(path string) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // G304: path is the daemon log
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}
