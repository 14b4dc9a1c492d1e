package keyhub

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Queue selects where a HotKey's action runs when the shortcut fires.
type Queue int

const (
	// QueueMain hands the action off to the main/UI queue and returns
	// before it runs.
	QueueMain Queue = iota
	// QueueCaller runs the action synchronously on the event-delivery
	// goroutine. Handlers must be fast to avoid starving dispatch.
	QueueCaller
)

// action is the closed set of ways a HotKey can fire: a plain closure or an
// indirect target/method call looked up by name at invocation time.
type action interface {
	// alive reports whether firing would reach a handler at all.
	alive() bool
	fire(hk *HotKey)
}

type funcAction struct {
	fn func(*HotKey)
}

func (a funcAction) alive() bool     { return a.fn != nil }
func (a funcAction) fire(hk *HotKey) { a.fn(hk) }

// targetAction resolves target.selector by reflection on every invocation,
// so a target that no longer offers the method degrades to not-handled
// instead of failing.
type targetAction struct {
	target   any
	selector string
}

func (a targetAction) method() (reflect.Value, bool) {
	if a.target == nil || a.selector == "" {
		return reflect.Value{}, false
	}
	m := reflect.ValueOf(a.target).MethodByName(a.selector)
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	t := m.Type()
	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != reflect.TypeOf((*HotKey)(nil)) {
			return reflect.Value{}, false
		}
	default:
		return reflect.Value{}, false
	}
	return m, true
}

func (a targetAction) alive() bool {
	_, ok := a.method()
	return ok
}

func (a targetAction) fire(hk *HotKey) {
	m, ok := a.method()
	if !ok {
		return
	}
	if m.Type().NumIn() == 1 {
		m.Call([]reflect.Value{reflect.ValueOf(hk)})
		return
	}
	m.Call(nil)
}

// HotKey is one registered (or registrable) shortcut: an identifier, the
// combo it reacts to, and exactly one action variant. The identifier and
// combo are immutable after construction; the OS handle pair is mutated
// only by the Center's register/unregister paths.
type HotKey struct {
	identifier string
	combo      KeyCombo
	act        action
	queue      Queue

	detectHold  atomic.Bool
	forwardNext atomic.Bool

	// mainExec marshals QueueMain actions; stamped by the Center at
	// registration, nil before that.
	mainExec func(func())

	mu    sync.Mutex // guards the handle pair
	subID *uint32
	ref   Binding
}

// NewHotKey builds a HotKey whose action is a closure.
func NewHotKey(identifier string, combo KeyCombo, queue Queue, fn func(*HotKey)) *HotKey {
	return &HotKey{identifier: identifier, combo: combo, queue: queue, act: funcAction{fn: fn}}
}

// NewHotKeyTarget builds a HotKey whose action calls the named method on
// target. The method may take no arguments or a single *HotKey.
func NewHotKeyTarget(identifier string, combo KeyCombo, queue Queue, target any, selector string) *HotKey {
	return &HotKey{identifier: identifier, combo: combo, queue: queue, act: targetAction{target: target, selector: selector}}
}

func (h *HotKey) Identifier() string { return h.identifier }
func (h *HotKey) Combo() KeyCombo    { return h.combo }

// SetDetectHold opts this hotkey in or out of repeat-on-hold behavior.
func (h *HotKey) SetDetectHold(on bool) { h.detectHold.Store(on) }

// DetectHold reports whether repeat-on-hold is enabled for this hotkey.
func (h *HotKey) DetectHold() bool { return h.detectHold.Load() }

// ForwardNextEvent arms a one-shot flag: the next Invoke fires the action
// but reports not-handled, so the OS forwards the key event down the
// handler chain exactly once.
func (h *HotKey) ForwardNextEvent() { h.forwardNext.Store(true) }

// Registered reports whether this hotkey currently holds an OS handle.
// Double-tap combos never hold one, even while in the registry.
func (h *HotKey) Registered() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ref != nil
}

// Invoke fires the hotkey's action and reports whether the event was
// handled. A missing or unresponsive target is a no-op reported as
// not-handled. QueueMain actions are handed off asynchronously; Invoke does
// not wait for them. Safe for concurrent use: it reads immutable fields and
// consumes the one-shot forward flag atomically.
func (h *HotKey) Invoke() bool {
	if h.act == nil || !h.act.alive() {
		return false
	}
	switch h.queue {
	case QueueMain:
		exec := h.mainExec
		if exec == nil {
			exec = func(f func()) { go f() }
		}
		exec(func() { h.act.fire(h) })
	default:
		h.act.fire(h)
	}
	return !h.forwardNext.CompareAndSwap(true, false)
}

// Equal reports structural equality over identifier, combo and the OS
// handle pair. The registry uses it to tell "this exact registration
// already exists" apart from "this identifier is reused".
func (h *HotKey) Equal(o *HotKey) bool {
	if h == nil || o == nil {
		return h == o
	}
	if h.identifier != o.identifier || h.combo != o.combo {
		return false
	}
	hid, href := h.handle()
	oid, oref := o.handle()
	if (hid == nil) != (oid == nil) {
		return false
	}
	if hid != nil && *hid != *oid {
		return false
	}
	return href == oref
}

func (h *HotKey) handle() (*uint32, Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subID, h.ref
}

func (h *HotKey) setHandle(subID uint32, ref Binding) {
	h.mu.Lock()
	h.subID = &subID
	h.ref = ref
	h.mu.Unlock()
}

func (h *HotKey) clearHandle() {
	h.mu.Lock()
	h.subID = nil
	h.ref = nil
	h.mu.Unlock()
}
