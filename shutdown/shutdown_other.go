//go:build !windows

package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// Notify wires ch to the process-termination signals. The embedder drains
// the channel and calls Center.Shutdown so timers are flushed and every
// hotkey is unbound before exit.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
