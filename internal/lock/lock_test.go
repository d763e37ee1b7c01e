package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNew(t *testing.T) {
	dir := "/tmp/test-runtime"
	l := New(dir)

	if l.lockPath != filepath.Join(dir, LockFile) {
		t.Errorf("lockPath = %q", l.lockPath)
	}
	if l.infoPath != filepath.Join(dir, InfoFile) {
		t.Errorf("infoPath = %q", l.infoPath)
	}
	if l.Held() {
		t.Error("new lock should not be held")
	}
}

func TestLockInfo_IsStale(t *testing.T) {
	tests := []struct {
		name      string
		pid       int
		wantStale bool
	}{
		{"current process", os.Getpid(), false},
		{"invalid pid zero", 0, true},
		{"invalid pid negative", -1, true},
		{"non-existent pid", 999999999, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &LockInfo{PID: tt.pid}
			if got := info.IsStale(); got != tt.wantStale {
				t.Errorf("IsStale() = %v, want %v", got, tt.wantStale)
			}
		})
	}
}

func TestLock_AcquireAndRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	l := New(dir)

	info, err := l.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", info.PID, os.Getpid())
	}
	if _, err := uuid.Parse(info.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", info.RunID, err)
	}
	if time.Since(info.AcquiredAt) > time.Minute {
		t.Errorf("AcquiredAt = %v, too old", info.AcquiredAt)
	}

	onDisk, err := l.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if onDisk.RunID != info.RunID {
		t.Errorf("on-disk RunID = %q, want %q", onDisk.RunID, info.RunID)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := l.Read(); !errors.Is(err, ErrNotLocked) {
		t.Errorf("Read() after release error = %v, want ErrNotLocked", err)
	}
	if l.Held() {
		t.Error("lock still held after release")
	}
}

func TestLock_AcquireTwiceReturnsSameInfo(t *testing.T) {
	l := New(t.TempDir())
	first, err := l.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = l.Release() }()

	second, err := l.Acquire()
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if second.RunID != first.RunID {
		t.Errorf("RunID changed: %q -> %q", first.RunID, second.RunID)
	}
}

func TestLock_SecondHolderIsLocked(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	if _, err := first.Acquire(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = first.Release() }()

	second := New(dir)
	_, err := second.Acquire()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("Acquire() error = %v, want ErrLocked", err)
	}

	state, info, err := second.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if state != Running {
		t.Errorf("state = %v, want %v", state, Running)
	}
	if info == nil || info.PID != os.Getpid() {
		t.Errorf("info = %+v, want holder PID %d", info, os.Getpid())
	}
}

func TestLock_StaleInfoIsReplaced(t *testing.T) {
	dir := t.TempDir()
	stale := `{"pid": 999999999, "acquired_at": "2020-01-01T00:00:00Z", "run_id": "old"}`
	if err := os.WriteFile(filepath.Join(dir, InfoFile), []byte(stale), 0644); err != nil {
		t.Fatal(err)
	}

	l := New(dir)
	info, err := l.Acquire()
	if err != nil {
		t.Fatalf("Acquire() over stale info error = %v", err)
	}
	defer func() { _ = l.Release() }()
	if info.RunID == "old" {
		t.Error("stale info was not replaced")
	}
}

func TestLock_Status(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string)
		want     State
		wantInfo bool
	}{
		{
			name:  "empty dir",
			setup: func(t *testing.T, dir string) {},
			want:  Unlocked,
		},
		{
			name: "info without lock file",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, InfoFile), `{"pid": 1, "run_id": "x"}`)
			},
			want:     Stale,
			wantInfo: true,
		},
		{
			name: "info with unheld lock file",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, LockFile), "")
				writeFile(t, filepath.Join(dir, InfoFile), `{"pid": 1, "run_id": "x"}`)
			},
			want:     Stale,
			wantInfo: true,
		},
		{
			name: "unheld lock file only",
			setup: func(t *testing.T, dir string) {
				writeFile(t, filepath.Join(dir, LockFile), "")
			},
			want: Unlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			state, info, err := New(dir).Status()
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if state != tt.want {
				t.Errorf("state = %v, want %v", state, tt.want)
			}
			if (info != nil) != tt.wantInfo {
				t.Errorf("info = %+v, wantInfo %v", info, tt.wantInfo)
			}
			if state == Stale {
				if _, err := os.Stat(filepath.Join(dir, InfoFile)); !os.IsNotExist(err) {
					t.Error("stale info file was not cleaned up")
				}
			}
		})
	}
}

func TestLock_StatusSelf(t *testing.T) {
	l := New(t.TempDir())
	if _, err := l.Acquire(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = l.Release() }()

	state, _, err := l.Status()
	if err != nil {
		t.Fatal(err)
	}
	if state != Self {
		t.Errorf("state = %v, want %v", state, Self)
	}
}

func TestLock_ReadInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, InfoFile), "not json")

	if _, err := New(dir).Read(); !errors.Is(err, ErrInvalidLock) {
		t.Errorf("Read() error = %v, want ErrInvalidLock", err)
	}
}

func TestLock_ReleaseNotHeld(t *testing.T) {
	if err := New(t.TempDir()).Release(); err != nil {
		t.Errorf("Release() on unheld lock error = %v", err)
	}
}

func TestState_String(t *testing.T) {
	for _, s := range []State{Unlocked, Running, Stale, Self, State(42)} {
		if s.String() == "" {
			t.Errorf("State(%d).String() is empty", s)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
