//go:build !debug

package keyhub

// An unrecognized event kind means version skew between the backend and the
// dispatcher. Release builds log and carry on.
func (c *Center) unknownEvent(ev KeyEvent) {
	c.log.Error().Int("kind", int(ev.Kind)).Uint32("sub_id", ev.SubID).Msg("unknown hotkey event kind")
}
