// Package keyhub registers process-wide keyboard shortcuts and dispatches
// OS-level press/release and modifier double-tap notifications back to their
// handlers, whether or not the application is focused.
//
// The Center is the registry and dispatch engine: it maps identifiers to
// HotKeys, binds their combos through a Backend (golang.design/x/hotkey in
// production, an in-memory fake in tests), drives the hold-repeat timer and
// routes modifier double-taps. Registration failures surface as booleans,
// never as panics or errors crossing the registry boundary.
//
//	center := keyhub.NewCenter()
//	hk := keyhub.NewHotKey("app.toggle",
//		keyhub.NewCombo(hotkey.KeySpace, hotkey.ModCtrl, hotkey.ModShift),
//		keyhub.QueueCaller,
//		func(h *keyhub.HotKey) { toggle() })
//	if !center.Register(hk) {
//		// identifier in use, or the OS refused the combo
//	}
//	defer center.Shutdown()
package keyhub
