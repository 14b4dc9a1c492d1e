package keyhub

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// DoubleTapHandler turns a stream of raw modifier-flag change notifications
// into double-tap reports: it calls notify with the modifier mask whenever
// the exact same set is pressed twice within the window, with a full release
// in between. Single taps are never reported, and a detected double-tap
// resets the state so a third press starts a fresh sequence.
//
// Installation of the raw monitors that observe flag changes is the
// embedder's job; they feed FlagsChanged with the current modifier mask
// (zero when all modifiers are up).
type DoubleTapHandler struct {
	clock  clockz.Clock
	window time.Duration
	notify func(mask uint32)

	mu       sync.Mutex
	lastMask uint32
	lastAt   time.Time
	primed   bool // a first tap is on record
	released bool // all modifiers went up since the last press
}

func NewDoubleTapHandler(window time.Duration, clock clockz.Clock, notify func(mask uint32)) *DoubleTapHandler {
	return &DoubleTapHandler{clock: clock, window: window, notify: notify}
}

// FlagsChanged feeds one flag-change notification. mask is the full set of
// modifiers currently down.
func (d *DoubleTapHandler) FlagsChanged(mask uint32) {
	now := d.clock.Now()

	d.mu.Lock()
	if mask == 0 {
		d.released = true
		d.mu.Unlock()
		return
	}
	if d.primed && d.released && mask == d.lastMask && now.Sub(d.lastAt) <= d.window {
		d.primed = false
		d.released = false
		notify := d.notify
		d.mu.Unlock()
		if notify != nil {
			notify(mask)
		}
		return
	}
	d.primed = true
	d.released = false
	d.lastMask = mask
	d.lastAt = now
	d.mu.Unlock()
}
