package keyhub

import "sync"

// The hold-repeat machine: Idle until a hold-enabled hotkey is pressed,
// ArmPending while the initial delay counts down, Repeating while the timer
// fires. A released event or a failed re-resolution returns it to Idle.
// There is one slot process-wide; arming while a cycle is active cancels it,
// so the most recent press wins.
type repeatState int

const (
	repeatIdle repeatState = iota
	repeatArmPending
	repeatRepeating
)

type repeatSlot struct {
	mu     sync.Mutex
	state  repeatState
	cancel chan struct{}
}

func (c *Center) armRepeat(subID uint32) {
	// Intervals are read at arm time, so preference changes apply to
	// subsequently-armed cycles only.
	initial := c.source.InitialKeyRepeatInterval()
	interval := c.source.KeyRepeatInterval()

	c.repeat.mu.Lock()
	if c.repeat.cancel != nil {
		close(c.repeat.cancel)
	}
	cancel := make(chan struct{})
	c.repeat.cancel = cancel
	c.repeat.state = repeatArmPending
	c.repeat.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		select {
		case <-cancel:
			return
		case <-c.stop:
			return
		case <-c.clock.After(initial):
		}
		c.markRepeating(cancel)

		ticker := c.clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-c.stop:
				return
			case <-ticker.C():
				// Re-resolve by sub-identifier rather than holding a
				// reference: a hotkey unregistered mid-hold simply
				// stops repeating.
				hk := c.lookupBySubID(subID)
				if hk == nil {
					c.cancelRepeatIf(cancel)
					return
				}
				hk.Invoke()
			}
		}
	}()
}

// cancelRepeat stops any pending arm task and any running repeat timer.
// Idempotent: cancelling twice or with nothing active is a no-op.
func (c *Center) cancelRepeat() {
	c.repeat.mu.Lock()
	if c.repeat.cancel != nil {
		close(c.repeat.cancel)
		c.repeat.cancel = nil
	}
	c.repeat.state = repeatIdle
	c.repeat.mu.Unlock()
}

// cancelRepeatIf returns the slot to Idle only if cancel is still the
// active cycle, so a stale cycle cannot tear down its successor.
func (c *Center) cancelRepeatIf(cancel chan struct{}) {
	c.repeat.mu.Lock()
	if c.repeat.cancel == cancel {
		close(c.repeat.cancel)
		c.repeat.cancel = nil
		c.repeat.state = repeatIdle
	}
	c.repeat.mu.Unlock()
}

func (c *Center) markRepeating(cancel chan struct{}) {
	c.repeat.mu.Lock()
	if c.repeat.cancel == cancel {
		c.repeat.state = repeatRepeating
	}
	c.repeat.mu.Unlock()
}

func (c *Center) repeatStateNow() repeatState {
	c.repeat.mu.Lock()
	defer c.repeat.mu.Unlock()
	return c.repeat.state
}
