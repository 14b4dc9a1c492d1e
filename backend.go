package keyhub

// EventKind distinguishes the two notifications the OS hotkey subsystem
// delivers for a bound combo.
type EventKind int

const (
	KeyPressed EventKind = iota
	KeyReleased
)

// KeyEvent is one OS-level hotkey notification. SubID is the sub-identifier
// supplied at bind time, used to resolve the owning HotKey.
type KeyEvent struct {
	Kind  EventKind
	SubID uint32
}

// Binding is the handle returned for one successful OS bind.
type Binding interface {
	// Unbind releases the OS registration. Calling it twice returns
	// ErrNotBound and is otherwise harmless.
	Unbind() error
}

// Backend abstracts the OS hotkey subsystem so the engine can run against
// the real platform registration or an in-memory fake in tests.
type Backend interface {
	// Bind registers the combo with the OS and tags its future events
	// with subID.
	Bind(combo KeyCombo, subID uint32) (Binding, error)

	// Events is the process-wide stream of pressed/released notifications
	// for every active binding.
	Events() <-chan KeyEvent

	// Close releases all platform resources. Bind fails afterwards.
	Close() error
}
