package keymap

import (
	"time"

	"github.com/sweeney/splitkbd/internal/hid"
)

// Constructor shorthands keeping the layout tables table-shaped.
func kc(code uint8) Key           { return Normal{Code: code} }
func md(mask uint8) Key           { return Modifier{Mask: mask} }
func sh(code uint8) Key           { return Shifted{Code: code} }
func mo(layer int) Key            { return LayerMomentary{Layer: layer} }
func tg(layer int) Key            { return LayerToggle{Layer: layer} }
func cs(usage uint16) Key         { return Consumer{Usage: usage} }
func lt(layer int, tap uint8) Key { return LayerTap{Layer: layer, Tap: tap} }
func mt(mask, tap uint8) Key      { return ModTap{Mask: mask, Tap: tap} }

func ltt(layer int, tap uint8, ms int) Key {
	return LayerTap{Layer: layer, Tap: tap, Timeout: time.Duration(ms) * time.Millisecond}
}

func mtt(mask, tap uint8, ms int) Key {
	return ModTap{Mask: mask, Tap: tap, Timeout: time.Duration(ms) * time.Millisecond}
}

var (
	xx = Transparent{} // fall through to the layer below
	no = Normal{}      // position bound to nothing
)

// DefaultLeft is the stock three-layer layout for the left half.
// Layer 0 is the typing base, layer 1 symbols/function keys, layer 2
// media controls. The thumb keys carry tightened tap-hold timeouts.
func DefaultLeft() *Map {
	m, err := New([][][]Key{
		// Layer 0 — base
		{
			{kc(hid.KeyEqual), kc(hid.Key1), kc(hid.Key2), kc(hid.Key3), kc(hid.Key4), kc(hid.Key5)},
			{kc(hid.KeyEsc), kc(hid.KeyQ), kc(hid.KeyW), kc(hid.KeyE), kc(hid.KeyR), kc(hid.KeyT)},
			{md(hid.ModLeftCtrl), kc(hid.KeyA), kc(hid.KeyS), kc(hid.KeyD), kc(hid.KeyF), kc(hid.KeyG)},
			{md(hid.ModLeftAlt), kc(hid.KeyZ), kc(hid.KeyX), kc(hid.KeyC), kc(hid.KeyV), kc(hid.KeyB)},
			{no, no, no, no, ltt(1, hid.KeyTab, 100), mtt(hid.ModLeftGUI, hid.KeySpace, 130)},
		},
		// Layer 1 — symbols and function keys
		{
			{xx, kc(hid.KeyF2), kc(hid.KeyF3), kc(hid.KeyF4), kc(hid.KeyF5), kc(hid.KeyF6)},
			{xx, kc(hid.KeyGrave), sh(hid.KeyDot), sh(hid.KeyComma), kc(hid.KeyMinus), sh(hid.KeyBackslash)},
			{xx, sh(hid.Key1), sh(hid.Key8), kc(hid.KeySlash), kc(hid.KeyEqual), sh(hid.Key7)},
			{xx, sh(hid.KeyGrave), sh(hid.KeyEqual), kc(hid.KeyLeftBracket), kc(hid.KeyRightBracket), sh(hid.Key5)},
			{no, no, no, no, xx, xx},
		},
		// Layer 2 — media
		{
			{xx, kc(hid.KeyF2), kc(hid.KeyF3), kc(hid.KeyF4), kc(hid.KeyF5), kc(hid.KeyF6)},
			{xx, cs(hid.ConsumerBrightnessUp), cs(hid.ConsumerMute), cs(hid.ConsumerVolumeDown), cs(hid.ConsumerVolumeUp), no},
			{xx, cs(hid.ConsumerBrightnessDown), cs(hid.ConsumerScanPrev), cs(hid.ConsumerScanNext), cs(hid.ConsumerPlayPause), cs(hid.ConsumerStop)},
			{xx, no, no, no, no, no},
			{no, no, no, xx, xx, xx},
		},
	})
	if err != nil {
		panic(err) // static table, validated at init
	}
	return m
}

// DefaultRight is the stock three-layer layout for the right half.
func DefaultRight() *Map {
	m, err := New([][][]Key{
		// Layer 0 — base
		{
			{kc(hid.Key6), kc(hid.Key7), kc(hid.Key8), kc(hid.Key9), kc(hid.Key0), kc(hid.KeyMinus)},
			{kc(hid.KeyY), kc(hid.KeyU), kc(hid.KeyI), kc(hid.KeyO), kc(hid.KeyP), kc(hid.KeyBackslash)},
			{kc(hid.KeyH), kc(hid.KeyJ), kc(hid.KeyK), kc(hid.KeyL), kc(hid.KeySemicolon), lt(1, hid.KeyQuote)},
			{kc(hid.KeyN), kc(hid.KeyM), kc(hid.KeyComma), kc(hid.KeyDot), kc(hid.KeySlash), md(hid.ModLeftGUI)},
			{mtt(hid.ModRightShift, hid.KeyEnter, 130), ltt(2, hid.KeyBackspace, 100), no, no, no, no},
		},
		// Layer 1 — symbols and function keys
		{
			{kc(hid.KeyF7), kc(hid.KeyF8), kc(hid.KeyF9), kc(hid.KeyF10), kc(hid.KeyF11), kc(hid.KeyF12)},
			{sh(hid.Key6), sh(hid.KeyQuote), sh(hid.KeySemicolon), kc(hid.KeySemicolon), sh(hid.KeyMinus), xx},
			{sh(hid.Key4), sh(hid.Key9), sh(hid.KeyLeftBracket), kc(hid.KeyLeftBracket), sh(hid.Key2), xx},
			{sh(hid.Key3), sh(hid.Key0), sh(hid.KeyRightBracket), kc(hid.KeyRightBracket), no, no},
			{xx, kc(hid.Key0), no, no, no, no},
		},
		// Layer 2 — navigation
		{
			{kc(hid.KeyF7), kc(hid.KeyF8), kc(hid.KeyF9), kc(hid.KeyF10), kc(hid.KeyF11), kc(hid.KeyF12)},
			{kc(hid.KeyPageUp), kc(hid.KeyHome), kc(hid.KeyUp), kc(hid.KeyEnd), no, kc(hid.KeyDelete)},
			{kc(hid.KeyPageDown), kc(hid.KeyLeft), kc(hid.KeyDown), kc(hid.KeyRight), no, kc(hid.KeyInsert)},
			{no, no, no, no, no, no},
			{xx, xx, no, no, no, no},
		},
	})
	if err != nil {
		panic(err)
	}
	return m
}

// ForSide returns the default layout for "left" or "right"; any other
// value returns nil.
func ForSide(side string) *Map {
	switch side {
	case "left":
		return DefaultLeft()
	case "right":
		return DefaultRight()
	}
	return nil
}
