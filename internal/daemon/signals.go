package daemon

import (
	"os"
	"syscall"
)

func daemonSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	}
}

// isRefreshSignal reports whether sig asks for an immediate relabel
// rather than a shutdown.
func isRefreshSignal(sig os.Signal) bool {
	return sig == syscall.SIGUSR1
}

// RefreshSignal is the signal that makes a running daemon relabel.
const RefreshSignal = syscall.SIGUSR1
