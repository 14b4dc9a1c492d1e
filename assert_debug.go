//go:build debug

package keyhub

import "fmt"

// Debug builds treat an unrecognized event kind as a programming error.
func (c *Center) unknownEvent(ev KeyEvent) {
	panic(fmt.Sprintf("keyhub: unknown hotkey event kind %d (sub_id %d)", ev.Kind, ev.SubID))
}
