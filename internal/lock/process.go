package lock

import (
	"errors"
	"os"
	"syscall"
)

// processExists reports whether pid names a live process. Signal 0 probes
// without delivering anything; EPERM still means the process exists.
func processExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
