package cmd

import (
	"errors"
	"strconv"
)

// Exit codes reported through SilentExitError.
const (
	// ExitNotRunning is returned by status when no renamer holds the lock.
	ExitNotRunning = 1
	// ExitUnknownIcons is returned by check when a rule names an icon the
	// icon table does not have.
	ExitUnknownIcons = 2
)

// SilentExitError ends a command with Code after it has already reported
// its result, so Execute prints nothing more.
type SilentExitError struct {
	Code int
}

func (e *SilentExitError) Error() string {
	return "exit status " + strconv.Itoa(e.Code)
}

// NewSilentExit returns a SilentExitError for code.
func NewSilentExit(code int) *SilentExitError {
	return &SilentExitError{Code: code}
}

// IsSilentExit returns the exit code carried by err, which may be wrapped.
func IsSilentExit(err error) (int, bool) {
	var se *SilentExitError
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Code, true
}
