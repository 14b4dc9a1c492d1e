//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// Notify wires ch to the process-termination signals. SIGTERM does not
// exist on Windows; interrupt covers console close.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
