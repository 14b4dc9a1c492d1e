package keyhub

// dispatchLoop consumes the backend's event stream. It is the only reader;
// pressed and released notifications for a single hotkey therefore arrive
// in OS order.
func (c *Center) dispatchLoop() {
	defer c.wg.Done()
	events := c.backend.Events()
	for {
		select {
		case <-c.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case KeyPressed:
				if c.paused.Load() {
					continue
				}
				c.handlePressed(ev.SubID)
			case KeyReleased:
				// A release always stops repetition, regardless of
				// which key is repeating: only one cycle is ever
				// active at a time.
				c.cancelRepeat()
			default:
				c.unknownEvent(ev)
			}
		}
	}
}

func (c *Center) handlePressed(subID uint32) {
	hk := c.lookupBySubID(subID)
	if hk == nil {
		return
	}
	hk.Invoke()
	if hk.DetectHold() && c.holdDetection.Load() {
		c.armRepeat(subID)
	}
}

// dispatchDoubleTap invokes every registered hotkey whose combo is a
// modifier-only double-tap of mask. Iteration order among matches is
// unspecified.
func (c *Center) dispatchDoubleTap(mask uint32) {
	locked := c.lock()
	defer c.unlock(locked)
	for _, hk := range c.hotkeys {
		if hk.combo.DoubledModifiers() && hk.combo.ModMask() == mask {
			hk.Invoke()
		}
	}
}
