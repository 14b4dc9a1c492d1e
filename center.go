package keyhub

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/zoobzio/clockz"
)

// RepeatSource supplies the two hold-repeat timing constants. Implementations
// may recompute them from user preferences; the Center reads them each time
// a repeat cycle is armed, so changes apply to subsequently-armed timers.
type RepeatSource interface {
	// InitialKeyRepeatInterval is the delay before auto-repeat starts.
	InitialKeyRepeatInterval() time.Duration
	// KeyRepeatInterval is the delay between repeat firings.
	KeyRepeatInterval() time.Duration
}

type fixedRepeat struct {
	initial, interval time.Duration
}

func (f fixedRepeat) InitialKeyRepeatInterval() time.Duration { return f.initial }
func (f fixedRepeat) KeyRepeatInterval() time.Duration        { return f.interval }

// FixedRepeat returns a RepeatSource with constant timing.
func FixedRepeat(initial, interval time.Duration) RepeatSource {
	return fixedRepeat{initial: initial, interval: interval}
}

// Defaults mirror the usual desktop key-repeat rates: 25 and 6 units of 15ms.
var defaultRepeat = fixedRepeat{initial: 375 * time.Millisecond, interval: 90 * time.Millisecond}

const defaultDoubleTapWindow = 300 * time.Millisecond

// Option configures a Center at construction.
type Option func(*config)

type config struct {
	backend   Backend
	clock     clockz.Clock
	logger    zerolog.Logger
	repeat    RepeatSource
	tapWindow time.Duration
	mainExec  func(func())
}

// WithBackend replaces the OS hotkey backend, e.g. with a FakeBackend.
func WithBackend(b Backend) Option {
	return func(c *config) { c.backend = b }
}

// WithClock sets the clock used for repeat timers and the double-tap window.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithLogger sets the diagnostics logger. Default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRepeatSource sets where hold-repeat timing constants come from.
func WithRepeatSource(s RepeatSource) Option {
	return func(c *config) { c.repeat = s }
}

// WithDoubleTapWindow sets the modifier double-tap debounce window.
func WithDoubleTapWindow(d time.Duration) Option {
	return func(c *config) { c.tapWindow = d }
}

// WithMainQueue replaces the executor for QueueMain actions. The executor
// must not run f before returning; embedders typically hand f to their UI
// thread here.
func WithMainQueue(exec func(func())) Option {
	return func(c *config) { c.mainExec = exec }
}

// Center is the process-wide hotkey registry and dispatch engine. It owns
// the identifier table, talks to the Backend to bind and unbind combos,
// consumes the backend's pressed/released stream, drives the single
// hold-repeat timer slot, and routes modifier double-taps to matching
// hotkeys.
//
// All table access goes through a bounded-wait lock; see timedMutex for the
// liveness tradeoff when the wait times out.
type Center struct {
	log     zerolog.Logger
	clock   clockz.Clock
	backend Backend
	source  RepeatSource

	mu      *timedMutex
	hotkeys map[string]*HotKey
	counter uint32 // next OS sub-identifier, never reused

	paused        atomic.Bool
	holdDetection atomic.Bool

	repeat repeatSlot
	taps   *DoubleTapHandler

	mainExec func(func())
	mainq    chan func()

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCenter builds a Center and starts its event dispatch. Callers own the
// instance and must call Shutdown before process exit.
func NewCenter(opts ...Option) *Center {
	cfg := config{
		clock:     clockz.RealClock,
		logger:    zerolog.New(io.Discard),
		repeat:    defaultRepeat,
		tapWindow: defaultDoubleTapWindow,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.backend == nil {
		cfg.backend = NewSystemBackend()
	}

	c := &Center{
		log:     cfg.logger,
		clock:   cfg.clock,
		backend: cfg.backend,
		source:  cfg.repeat,
		mu:      newTimedMutex(),
		hotkeys: make(map[string]*HotKey),
		stop:    make(chan struct{}),
	}
	c.holdDetection.Store(true)
	c.taps = NewDoubleTapHandler(cfg.tapWindow, cfg.clock, c.dispatchDoubleTap)

	c.mainExec = cfg.mainExec
	if c.mainExec == nil {
		// Serialize QueueMain actions on one goroutine, standing in for
		// the embedder's UI thread.
		c.mainq = make(chan func(), 16)
		c.mainExec = c.queueMain
		c.wg.Add(1)
		go c.mainLoop()
	}

	c.wg.Add(1)
	go c.dispatchLoop()
	return c
}

var (
	defaultCenter *Center
	defaultOnce   sync.Once
)

// Default returns the lazily-created process-wide Center backed by the real
// OS hotkey subsystem. Prefer injecting a Center built with NewCenter where
// testability matters.
func Default() *Center {
	defaultOnce.Do(func() {
		defaultCenter = NewCenter()
	})
	return defaultCenter
}

// Register binds hk and adds it to the registry. It returns false, with no
// state changed, when the identifier is already taken, when an equal hotkey
// is already registered, or when the OS refuses the combo. Double-tap
// combos are recorded without any OS call.
func (c *Center) Register(hk *HotKey) bool {
	if hk == nil || hk.identifier == "" {
		return false
	}

	locked := c.lock()
	if _, dup := c.hotkeys[hk.identifier]; dup {
		c.unlock(locked)
		c.log.Debug().Str("id", hk.identifier).Msg("register rejected: identifier in use")
		return false
	}
	for _, existing := range c.hotkeys {
		if existing.Equal(hk) {
			c.unlock(locked)
			c.log.Debug().Str("id", hk.identifier).Msg("register rejected: equal hotkey present")
			return false
		}
	}

	hk.mainExec = c.mainExec

	if hk.combo.DoubledModifiers() {
		// Handled purely via the modifier double-tap path.
		c.hotkeys[hk.identifier] = hk
		c.unlock(locked)
		c.log.Info().Str("id", hk.identifier).Stringer("combo", hk.combo).Msg("registered double-tap hotkey")
		return true
	}

	// Insert before the OS call so a concurrent register of the same
	// identifier fails fast instead of waiting on bind latency. The
	// sub-identifier is consumed either way; ids are never reused.
	subID := c.counter
	c.counter++
	c.hotkeys[hk.identifier] = hk
	c.unlock(locked)

	ref, err := c.backend.Bind(hk.combo, subID)
	if err != nil {
		// A stale handle from an earlier registration is released
		// before reporting failure.
		if _, stale := hk.handle(); stale != nil {
			_ = stale.Unbind()
			hk.clearHandle()
		}
		locked = c.lock()
		if c.hotkeys[hk.identifier] == hk {
			delete(c.hotkeys, hk.identifier)
		}
		c.unlock(locked)
		c.log.Error().Err(err).Str("id", hk.identifier).Stringer("combo", hk.combo).Msg("OS bind failed")
		return false
	}

	hk.setHandle(subID, ref)
	c.log.Info().Str("id", hk.identifier).Uint32("sub_id", subID).Stringer("combo", hk.combo).Msg("registered hotkey")
	return true
}

// Unregister unbinds hk and removes it from the registry, reverting the
// hotkey to its pre-registration state. A hotkey without an OS handle is a
// no-op unless it is a registered double-tap combo.
func (c *Center) Unregister(hk *HotKey) {
	if hk == nil {
		return
	}
	if hk.combo.DoubledModifiers() {
		locked := c.lock()
		if c.hotkeys[hk.identifier] == hk {
			delete(c.hotkeys, hk.identifier)
		}
		c.unlock(locked)
		return
	}

	subID, ref := hk.handle()
	if subID == nil && ref == nil {
		return
	}
	if ref != nil {
		if err := ref.Unbind(); err != nil {
			c.log.Warn().Err(err).Str("id", hk.identifier).Msg("unbind failed")
		}
	}
	locked := c.lock()
	if c.hotkeys[hk.identifier] == hk {
		delete(c.hotkeys, hk.identifier)
	}
	c.unlock(locked)
	hk.clearHandle()
}

// UnregisterByIdentifier unregisters the hotkey registered under id and
// reports whether one was found.
func (c *Center) UnregisterByIdentifier(id string) bool {
	locked := c.lock()
	hk := c.hotkeys[id]
	c.unlock(locked)
	if hk == nil {
		return false
	}
	c.Unregister(hk)
	return true
}

// UnregisterAll unregisters every currently-registered hotkey.
func (c *Center) UnregisterAll() {
	locked := c.lock()
	all := make([]*HotKey, 0, len(c.hotkeys))
	for _, hk := range c.hotkeys {
		all = append(all, hk)
	}
	c.unlock(locked)
	for _, hk := range all {
		c.Unregister(hk)
	}
}

// Registered returns the identifiers currently in the registry.
func (c *Center) Registered() []string {
	locked := c.lock()
	ids := make([]string, 0, len(c.hotkeys))
	for id := range c.hotkeys {
		ids = append(ids, id)
	}
	c.unlock(locked)
	return ids
}

// IsRegistered reports whether id is currently in the registry.
func (c *Center) IsRegistered(id string) bool {
	locked := c.lock()
	_, ok := c.hotkeys[id]
	c.unlock(locked)
	return ok
}

// Pause detaches the pressed handler: pressed notifications are dropped
// until Resume, without unregistering anything. Released notifications are
// still processed so a repeat in flight always stops. Idempotent.
func (c *Center) Pause() { c.paused.Store(true) }

// Resume re-attaches the pressed handler. Idempotent.
func (c *Center) Resume() { c.paused.Store(false) }

// SetHoldDetection toggles the global hold-repeat switch. Per-hotkey
// DetectHold flags only take effect while this is on. Defaults to on.
func (c *Center) SetHoldDetection(on bool) { c.holdDetection.Store(on) }

// FlagsChanged feeds one raw modifier-flag change notification into the
// double-tap detector. The embedder's global/local raw monitors call this;
// mask zero means all modifiers were released.
func (c *Center) FlagsChanged(mask uint32) { c.taps.FlagsChanged(mask) }

// Shutdown synchronously cancels pending repeat timers, unregisters every
// hotkey and stops event dispatch. Safe to call more than once; intended to
// run on process-termination-requested.
func (c *Center) Shutdown() {
	c.stopOnce.Do(func() {
		c.cancelRepeat()
		c.UnregisterAll()
		close(c.stop)
		if err := c.backend.Close(); err != nil {
			c.log.Warn().Err(err).Msg("backend close failed")
		}
		c.wg.Wait()
		c.log.Info().Msg("hotkey center shut down")
	})
}

func (c *Center) lock() bool {
	locked := c.mu.Lock(registryLockTimeout)
	if !locked {
		// Documented tradeoff: after the bounded wait the operation
		// proceeds unsynchronized rather than deadlocking delivery.
		c.log.Warn().Dur("timeout", registryLockTimeout).Msg("registry lock timed out; proceeding unsynchronized")
	}
	return locked
}

func (c *Center) unlock(locked bool) {
	if locked {
		c.mu.Unlock()
	}
}

func (c *Center) lookupBySubID(subID uint32) *HotKey {
	locked := c.lock()
	defer c.unlock(locked)
	for _, hk := range c.hotkeys {
		if id, _ := hk.handle(); id != nil && *id == subID {
			return hk
		}
	}
	return nil
}

func (c *Center) queueMain(f func()) {
	select {
	case c.mainq <- f:
	case <-c.stop:
	}
}

func (c *Center) mainLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case f := <-c.mainq:
			f()
		}
	}
}
