// Package prefs derives the hold-repeat timing constants from user
// preferences stored in a fyne.Preferences backend.
package prefs

import (
	"time"

	"fyne.io/fyne/v2"
)

// Preference keys use the names desktop systems store key-repeat rates
// under: raw values in 15ms units.
const (
	KeyRepeatKey        = "KeyRepeat"
	InitialKeyRepeatKey = "InitialKeyRepeat"
)

const (
	repeatUnit = 15 * time.Millisecond

	keyRepeatFloor        = 2
	initialKeyRepeatFloor = 15

	defaultKeyRepeat        = 6
	defaultInitialKeyRepeat = 25
)

// Store reads and writes the two repeat-rate preferences. It implements
// keyhub.RepeatSource: intervals are max(raw, floor) * 15ms, recomputed on
// every read so preference changes apply to subsequently-armed timers.
type Store struct {
	p fyne.Preferences
}

func NewStore(p fyne.Preferences) *Store {
	return &Store{p: p}
}

// KeyRepeatInterval is the delay between auto-repeat firings.
func (s *Store) KeyRepeatInterval() time.Duration {
	raw := s.p.IntWithFallback(KeyRepeatKey, defaultKeyRepeat)
	if raw < keyRepeatFloor {
		raw = keyRepeatFloor
	}
	return time.Duration(raw) * repeatUnit
}

// InitialKeyRepeatInterval is the delay before auto-repeat starts.
func (s *Store) InitialKeyRepeatInterval() time.Duration {
	raw := s.p.IntWithFallback(InitialKeyRepeatKey, defaultInitialKeyRepeat)
	if raw < initialKeyRepeatFloor {
		raw = initialKeyRepeatFloor
	}
	return time.Duration(raw) * repeatUnit
}

// SetKeyRepeat stores the raw between-repeats rate.
func (s *Store) SetKeyRepeat(raw int) {
	s.p.SetInt(KeyRepeatKey, raw)
}

// SetInitialKeyRepeat stores the raw initial-delay rate.
func (s *Store) SetInitialKeyRepeat(raw int) {
	s.p.SetInt(InitialKeyRepeatKey, raw)
}
