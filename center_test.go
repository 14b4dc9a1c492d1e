package keyhub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.design/x/hotkey"
)

// Short intervals keep the repeat tests fast while leaving room for
// scheduler jitter.
var testRepeat = fixedRepeat{initial: 50 * time.Millisecond, interval: 25 * time.Millisecond}

func newTestCenter(t *testing.T, opts ...Option) (*Center, *FakeBackend) {
	t.Helper()
	fb := NewFakeBackend()
	base := []Option{WithBackend(fb), WithRepeatSource(testRepeat)}
	c := NewCenter(append(base, opts...)...)
	t.Cleanup(c.Shutdown)
	return c, fb
}

// fireRecorder collects hotkey firings on a channel keyed by identifier.
func fireRecorder() (chan string, func(*HotKey)) {
	ch := make(chan string, 64)
	return ch, func(h *HotKey) { ch <- h.Identifier() }
}

func waitFire(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hotkey to fire")
		return ""
	}
}

func expectQuiet(t *testing.T, ch chan string, d time.Duration) {
	t.Helper()
	select {
	case id := <-ch:
		t.Fatalf("unexpected firing of %q", id)
	case <-time.After(d):
	}
}

func drain(ch chan string) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func comboA() KeyCombo { return NewCombo(hotkey.KeyA, hotkey.ModCtrl) }
func comboB() KeyCombo { return NewCombo(hotkey.KeyB, hotkey.ModCtrl, hotkey.ModShift) }

func TestRegisterAndDispatch(t *testing.T) {
	c, fb := newTestCenter(t)
	ch, fn := fireRecorder()

	hk := NewHotKey("app.next", comboA(), QueueCaller, fn)
	require.True(t, c.Register(hk))
	require.True(t, hk.Registered())
	assert.Equal(t, 1, fb.BoundCount())

	fb.SimPress(0)
	assert.Equal(t, "app.next", waitFire(t, ch))
}

func TestRegisterDuplicateIdentifier(t *testing.T) {
	c, fb := newTestCenter(t)
	ch, fn := fireRecorder()

	first := NewHotKey("app.next", comboA(), QueueCaller, fn)
	second := NewHotKey("app.next", comboB(), QueueCaller, fn)

	require.True(t, c.Register(first))
	assert.False(t, c.Register(second), "second register with same identifier must fail")

	// The table retains only the first, and no OS call was made for the
	// second.
	assert.Equal(t, 1, fb.BoundCount())
	assert.False(t, second.Registered())
	fb.SimPress(0)
	assert.Equal(t, "app.next", waitFire(t, ch))
	expectQuiet(t, ch, 50*time.Millisecond)
}

func TestReregisterGetsFreshSubID(t *testing.T) {
	c, _ := newTestCenter(t)
	_, fn := fireRecorder()

	hk := NewHotKey("app.next", comboA(), QueueCaller, fn)
	require.True(t, c.Register(hk))
	firstID, _ := hk.handle()
	require.NotNil(t, firstID)
	first := *firstID

	c.Unregister(hk)
	assert.False(t, hk.Registered())
	id, ref := hk.handle()
	assert.Nil(t, id)
	assert.Nil(t, ref)

	require.True(t, c.Register(hk), "re-register after unregister must succeed")
	secondID, _ := hk.handle()
	require.NotNil(t, secondID)
	assert.NotEqual(t, first, *secondID, "sub-identifiers are never reused")
}

func TestRegisterBindFailure(t *testing.T) {
	c, fb := newTestCenter(t)
	_, fn := fireRecorder()

	fb.SetBindError(errors.New("combo rejected"))
	hk := NewHotKey("app.next", comboA(), QueueCaller, fn)
	assert.False(t, c.Register(hk))
	assert.False(t, hk.Registered())
	assert.False(t, c.IsRegistered("app.next"), "failed bind must leave no table entry")
	assert.Equal(t, 0, fb.BoundCount())
}

func TestRegisterBindFailureReleasesStaleHandle(t *testing.T) {
	c1, fb1 := newTestCenter(t)
	c2, fb2 := newTestCenter(t)
	_, fn := fireRecorder()

	hk := NewHotKey("app.next", comboA(), QueueCaller, fn)
	require.True(t, c1.Register(hk))
	require.Equal(t, 1, fb1.BoundCount())

	// Registering elsewhere while still carrying the old handle: the bind
	// fails and the stale handle must be released first.
	fb2.SetBindError(errors.New("combo rejected"))
	assert.False(t, c2.Register(hk))
	assert.Equal(t, 0, fb1.BoundCount(), "stale handle must be unbound")
	assert.False(t, hk.Registered())
}

func TestConcurrentRegisterSameCombo(t *testing.T) {
	c, fb := newTestCenter(t)
	_, fn := fireRecorder()

	const n = 8
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hk := NewHotKey("app.slot."+string(rune('a'+i)), comboA(), QueueCaller, fn)
			results[i] = c.Register(hk)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one register may bind the combo")
	assert.Equal(t, 1, fb.BoundCount())
}

func TestUnregisterByIdentifier(t *testing.T) {
	c, fb := newTestCenter(t)
	_, fn := fireRecorder()

	require.True(t, c.Register(NewHotKey("app.next", comboA(), QueueCaller, fn)))
	assert.True(t, c.UnregisterByIdentifier("app.next"))
	assert.False(t, c.UnregisterByIdentifier("app.next"), "second unregister finds nothing")
	assert.False(t, c.UnregisterByIdentifier("no.such.id"))
	assert.Equal(t, 0, fb.BoundCount())
}

func TestUnregisterAllThenInvokeIsNoop(t *testing.T) {
	c, fb := newTestCenter(t)
	ch, fn := fireRecorder()

	a := NewHotKey("app.a", comboA(), QueueCaller, fn)
	b := NewHotKey("app.b", comboB(), QueueCaller, fn)
	require.True(t, c.Register(a))
	require.True(t, c.Register(b))

	c.UnregisterAll()
	assert.Empty(t, c.Registered())
	assert.Equal(t, 0, fb.BoundCount())

	// Invoking an unregistered hotkey still just runs the action; no OS
	// interaction, no panic.
	assert.True(t, a.Invoke())
	waitFire(t, ch)
	assert.Equal(t, 0, fb.BoundCount())
}

func TestPauseResume(t *testing.T) {
	c, fb := newTestCenter(t)
	ch, fn := fireRecorder()

	require.True(t, c.Register(NewHotKey("app.next", comboA(), QueueCaller, fn)))

	c.Pause()
	c.Pause() // idempotent
	fb.SimPress(0)
	expectQuiet(t, ch, 80*time.Millisecond)

	c.Resume()
	c.Resume() // idempotent
	fb.SimPress(0)
	assert.Equal(t, "app.next", waitFire(t, ch))
}

func TestUnknownEventKindIgnored(t *testing.T) {
	c, fb := newTestCenter(t)
	ch, fn := fireRecorder()

	require.True(t, c.Register(NewHotKey("app.next", comboA(), QueueCaller, fn)))

	fb.SimEvent(KeyEvent{Kind: EventKind(99), SubID: 0})
	// Dispatch keeps running.
	fb.SimPress(0)
	assert.Equal(t, "app.next", waitFire(t, ch))
}

func TestRegisteredIntrospection(t *testing.T) {
	c, _ := newTestCenter(t)
	_, fn := fireRecorder()

	require.True(t, c.Register(NewHotKey("app.a", comboA(), QueueCaller, fn)))
	require.True(t, c.Register(NewHotKey("app.b", comboB(), QueueCaller, fn)))

	assert.ElementsMatch(t, []string{"app.a", "app.b"}, c.Registered())
	assert.True(t, c.IsRegistered("app.a"))
	assert.False(t, c.IsRegistered("app.c"))
}

func TestDoubleTapComboSkipsOS(t *testing.T) {
	c, fb := newTestCenter(t)
	_, fn := fireRecorder()

	hk := NewHotKey("app.dtap", NewDoubleTapCombo(hotkey.ModCtrl), QueueCaller, fn)
	require.True(t, c.Register(hk))
	assert.Equal(t, 0, fb.BoundCount(), "double-tap combos are never sent to the OS")
	assert.False(t, hk.Registered())
	assert.True(t, c.IsRegistered("app.dtap"))

	c.Unregister(hk)
	assert.False(t, c.IsRegistered("app.dtap"))
}

func TestShutdownUnregistersEverything(t *testing.T) {
	fb := NewFakeBackend()
	c := NewCenter(WithBackend(fb), WithRepeatSource(testRepeat))
	_, fn := fireRecorder()

	require.True(t, c.Register(NewHotKey("app.a", comboA(), QueueCaller, fn)))
	require.True(t, c.Register(NewHotKey("app.b", comboB(), QueueCaller, fn)))

	c.Shutdown()
	c.Shutdown() // safe to call twice
	assert.Equal(t, 0, fb.BoundCount())
	assert.Empty(t, c.Registered())
}
