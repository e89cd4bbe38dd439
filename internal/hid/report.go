// Package hid models the boot keyboard report and the consumer-control
// report, plus the usage constants the keymap refers to.
package hid

import "errors"

// MaxKeysInReport is the number of simultaneous keycodes a boot report carries.
const MaxKeysInReport = 6

// ErrReportFull is returned by AddKey when all six key slots are occupied.
// The caller drops the key and keeps going; a full report is not a fault.
var ErrReportFull = errors.New("hid: report full")

// Report is the boot keyboard report: one modifier bitmask and up to six
// concurrently held keycodes. The zero value is the empty report.
type Report struct {
	Modifiers uint8
	Keys      [MaxKeysInReport]uint8
}

// AddKey places keycode into the first free slot.
// Returns ErrReportFull when no slot is free; the report is unchanged.
func (r *Report) AddKey(keycode uint8) error {
	for i := range r.Keys {
		if r.Keys[i] == 0 {
			r.Keys[i] = keycode
			return nil
		}
	}
	return ErrReportFull
}

// RemoveKey removes the first occurrence of keycode and shifts the
// remaining keys down so occupied slots stay contiguous. Removing a
// keycode that is not present is a no-op.
func (r *Report) RemoveKey(keycode uint8) {
	for i := range r.Keys {
		if r.Keys[i] == keycode {
			copy(r.Keys[i:], r.Keys[i+1:])
			r.Keys[MaxKeysInReport-1] = 0
			return
		}
	}
}

// SetModifier ORs the given modifier bits into the report.
func (r *Report) SetModifier(mask uint8) {
	r.Modifiers |= mask
}

// ClearModifier clears the given modifier bits.
func (r *Report) ClearModifier(mask uint8) {
	r.Modifiers &^= mask
}

// HasKey reports whether keycode occupies a slot.
func (r *Report) HasKey(keycode uint8) bool {
	for _, k := range r.Keys {
		if k == keycode {
			return true
		}
	}
	return false
}

// Clear resets the report to empty.
func (r *Report) Clear() {
	*r = Report{}
}

// Bytes returns the 8-byte wire form: modifiers, reserved, six keycodes.
func (r Report) Bytes() []byte {
	b := make([]byte, 8)
	b[0] = r.Modifiers
	copy(b[2:], r.Keys[:])
	return b
}

// ReportFromBytes rebuilds a Report from its 8-byte wire form.
// Short input yields an empty report.
func ReportFromBytes(b []byte) Report {
	var r Report
	if len(b) < 8 {
		return r
	}
	r.Modifiers = b[0]
	copy(r.Keys[:], b[2:8])
	return r
}

// ConsumerReport is the consumer-control report: a single 16-bit usage.
// Zero means no usage active. Consumer usages are momentary pulses, not
// held state; senders transmit the set usage and then a cleared report.
type ConsumerReport struct {
	Usage uint16
}

// Bytes returns the 2-byte little-endian wire form.
func (c ConsumerReport) Bytes() []byte {
	return []byte{byte(c.Usage), byte(c.Usage >> 8)}
}
