package keyhub

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// systemBackend binds combos through golang.design/x/hotkey and pumps each
// binding's keydown/keyup channels into one shared event stream.
type systemBackend struct {
	events chan KeyEvent
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewSystemBackend returns the platform hotkey backend. On macOS the caller's
// process must run an event loop on the main thread (mainthread.Init).
func NewSystemBackend() Backend {
	return &systemBackend{
		events: make(chan KeyEvent, 16),
		done:   make(chan struct{}),
	}
}

func (b *systemBackend) Bind(combo KeyCombo, subID uint32) (Binding, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBackendClosed
	}
	b.mu.Unlock()

	if combo.DoubledModifiers() {
		return nil, fmt.Errorf("combo %v has no literal key to bind", combo)
	}

	hk := hotkey.New(combo.Modifiers(), combo.Key())
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComboTaken, err)
	}

	bd := &systemBinding{hk: hk, stop: make(chan struct{})}
	go b.pump(bd, subID)
	return bd, nil
}

// pump forwards one binding's events into the shared stream until the
// binding is released or the backend closes.
func (b *systemBackend) pump(bd *systemBinding, subID uint32) {
	for {
		select {
		case <-bd.stop:
			return
		case <-b.done:
			return
		case <-bd.hk.Keydown():
			b.send(KeyEvent{Kind: KeyPressed, SubID: subID})
		case <-bd.hk.Keyup():
			b.send(KeyEvent{Kind: KeyReleased, SubID: subID})
		}
	}
}

func (b *systemBackend) send(ev KeyEvent) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

func (b *systemBackend) Events() <-chan KeyEvent { return b.events }

func (b *systemBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
	return nil
}

type systemBinding struct {
	hk   *hotkey.Hotkey
	once sync.Once
	stop chan struct{}
}

func (bd *systemBinding) Unbind() error {
	err := ErrNotBound
	bd.once.Do(func() {
		close(bd.stop)
		err = bd.hk.Unregister()
	})
	return err
}
