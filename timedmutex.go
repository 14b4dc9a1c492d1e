package keyhub

import "time"

// registryLockTimeout bounds how long registry operations wait for the lock
// before proceeding unsynchronized.
const registryLockTimeout = 10 * time.Millisecond

// timedMutex is a mutual-exclusion lock with a bounded wait. When the lock
// cannot be acquired within the timeout the caller proceeds without it:
// liveness is deliberately preferred over strict mutual exclusion, so a
// handler that re-enters the registry can never deadlock the event-delivery
// goroutine. Callers must only Unlock when Lock returned true.
type timedMutex struct {
	ch chan struct{}
}

func newTimedMutex() *timedMutex {
	m := &timedMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

// Lock acquires the lock, waiting at most timeout. It reports whether the
// lock was actually acquired.
func (m *timedMutex) Lock(timeout time.Duration) bool {
	select {
	case <-m.ch:
		return true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-m.ch:
		return true
	case <-t.C:
		return false
	}
}

// Unlock releases the lock. Releasing an unheld lock is a no-op.
func (m *timedMutex) Unlock() {
	select {
	case m.ch <- struct{}{}:
	default:
	}
}
