package keyhub

import "sync"

// FakeBackend is an in-memory Backend for tests. It enforces system-wide
// combo uniqueness like a real OS and can be told to refuse binds.
type FakeBackend struct {
	mu     sync.Mutex
	events chan KeyEvent
	bound  map[uint32]KeyCombo
	err    error
	closed bool
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		events: make(chan KeyEvent, 16),
		bound:  make(map[uint32]KeyCombo),
	}
}

// SetBindError makes every subsequent Bind fail with err until cleared
// with SetBindError(nil).
func (f *FakeBackend) SetBindError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FakeBackend) Bind(combo KeyCombo, subID uint32) (Binding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrBackendClosed
	}
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.bound {
		if c.Equal(combo) {
			return nil, ErrComboTaken
		}
	}
	f.bound[subID] = combo
	return &fakeBinding{backend: f, subID: subID}, nil
}

func (f *FakeBackend) Events() <-chan KeyEvent { return f.events }

func (f *FakeBackend) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// SimPress injects a pressed notification for subID.
func (f *FakeBackend) SimPress(subID uint32) {
	f.events <- KeyEvent{Kind: KeyPressed, SubID: subID}
}

// SimRelease injects a released notification for subID.
func (f *FakeBackend) SimRelease(subID uint32) {
	f.events <- KeyEvent{Kind: KeyReleased, SubID: subID}
}

// SimEvent injects an arbitrary event, including unknown kinds.
func (f *FakeBackend) SimEvent(ev KeyEvent) {
	f.events <- ev
}

// BoundCount reports how many bindings are currently live.
func (f *FakeBackend) BoundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bound)
}

// IsBound reports whether subID still has a live binding.
func (f *FakeBackend) IsBound(subID uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.bound[subID]
	return ok
}

type fakeBinding struct {
	backend *FakeBackend
	subID   uint32
	once    sync.Once
}

func (b *fakeBinding) Unbind() error {
	err := ErrNotBound
	b.once.Do(func() {
		b.backend.mu.Lock()
		delete(b.backend.bound, b.subID)
		b.backend.mu.Unlock()
		err = nil
	})
	return err
}
