package keyhub

import "errors"

// ErrComboTaken is returned by a Backend when the OS refuses to bind a combo,
// typically because another application already owns it system-wide.
var ErrComboTaken = errors.New("key combination already bound by another application")

// ErrNotBound is returned when unbinding a handle that was already released.
var ErrNotBound = errors.New("binding already released")

// ErrBackendClosed is returned when binding through a closed backend.
var ErrBackendClosed = errors.New("hotkey backend is closed")
