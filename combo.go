package keyhub

import (
	"fmt"

	"golang.design/x/hotkey"
)

// KeyCombo identifies a single shortcut: a key plus a set of modifiers, or a
// modifier set meant to be double-tapped with no literal key. Values are
// immutable and comparable; two combos are equal iff their key, modifier
// mask and doubled flag all match.
//
// The doubled flag is explicit rather than inferred from a zero key, because
// key code 0 is a real key on macOS.
type KeyCombo struct {
	key     hotkey.Key
	mods    uint32
	doubled bool
}

// NewCombo builds a key+modifier combo.
func NewCombo(key hotkey.Key, mods ...hotkey.Modifier) KeyCombo {
	return KeyCombo{key: key, mods: maskOf(mods)}
}

// NewDoubleTapCombo builds a modifier-only combo that triggers when the
// modifier set is pressed twice quickly. Such combos are never bound at the
// OS level; they are matched against double-tap reports instead.
func NewDoubleTapCombo(mods ...hotkey.Modifier) KeyCombo {
	return KeyCombo{mods: maskOf(mods), doubled: true}
}

// Key returns the literal key, meaningless when DoubledModifiers is true.
func (c KeyCombo) Key() hotkey.Key { return c.key }

// ModMask returns the OR of the combo's modifier bits.
func (c KeyCombo) ModMask() uint32 { return c.mods }

// Modifiers decomposes the modifier mask back into individual modifiers,
// suitable for passing to the OS binding layer.
func (c KeyCombo) Modifiers() []hotkey.Modifier {
	var mods []hotkey.Modifier
	for bit := uint32(1); bit != 0; bit <<= 1 {
		if c.mods&bit != 0 {
			mods = append(mods, hotkey.Modifier(bit))
		}
	}
	return mods
}

// DoubledModifiers reports whether this combo is a modifier-only double-tap
// shortcut rather than a key+modifier chord.
func (c KeyCombo) DoubledModifiers() bool { return c.doubled }

// Equal reports structural equality.
func (c KeyCombo) Equal(o KeyCombo) bool { return c == o }

func (c KeyCombo) String() string {
	if c.doubled {
		return fmt.Sprintf("combo(2x mods=%#x)", c.mods)
	}
	return fmt.Sprintf("combo(key=%#x mods=%#x)", uint16(c.key), c.mods)
}

func maskOf(mods []hotkey.Modifier) uint32 {
	var mask uint32
	for _, m := range mods {
		mask |= uint32(m)
	}
	return mask
}
