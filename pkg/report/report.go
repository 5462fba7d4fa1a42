// Package report decodes USB HID boot-protocol keyboard input reports.
//
// The boot keyboard report is a fixed 8-byte layout: byte 0 is a bitmask of
// modifier keys, byte 1 is reserved, and bytes 2-7 carry up to six concurrent
// key codes (0x00 meaning an empty slot). Each report describes the full set
// of keys currently held, not a transition.
package report

import (
	"errors"
	"fmt"
)

// Length is the size of a boot-protocol keyboard report in bytes.
const Length = 8

// KeySlots is the number of key-code slots in a report (bytes 2-7).
const KeySlots = 6

// ErrInvalidLength is returned by Decode for buffers shorter than Length.
var ErrInvalidLength = errors.New("report: buffer shorter than 8 bytes")

// Decoded is the structured form of a keyboard report.
type Decoded struct {
	Modifiers []string `json:"modifiers"`
	Keys      []string `json:"keys"`
	RawHex    []string `json:"rawHex"`
}

// Empty reports whether no modifier and no key is held, i.e. the report is
// the idle "all released" report.
func (d Decoded) Empty() bool {
	return len(d.Modifiers) == 0 && len(d.Keys) == 0
}

// Decode converts a raw keyboard report into its Decoded form. Buffers longer
// than Length are truncated to the first 8 bytes; shorter buffers yield
// ErrInvalidLength. RawHex is populated with whatever bytes were received even
// when an error is returned, so callers can log the malformed buffer.
func Decode(raw []byte) (Decoded, error) {
	d := Decoded{RawHex: hexBytes(raw)}
	if len(raw) < Length {
		return d, fmt.Errorf("%w (got %d)", ErrInvalidLength, len(raw))
	}
	raw = raw[:Length]
	d.RawHex = d.RawHex[:Length]

	for bit := 0; bit < 8; bit++ {
		if raw[0]&(1<<bit) != 0 {
			d.Modifiers = append(d.Modifiers, modifierNames[bit])
		}
	}

	// Byte 1 is reserved. Bytes 2-7 are key slots; 0x00 means empty.
	for _, code := range raw[2:Length] {
		if code == 0 {
			continue
		}
		d.Keys = append(d.Keys, KeyName(code))
	}

	return d, nil
}

// KeyName returns the human-readable label for a key code. Codes missing from
// the table format as "Unknown(0xHH)" rather than failing.
func KeyName(code byte) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", code)
}

// ModifierName returns the label for a single modifier bit flag (0x01, 0x02,
// 0x04, ... 0x80). Values that are not a single modifier bit format as
// "Unknown(0xHH)".
func ModifierName(flag byte) string {
	for bit := 0; bit < 8; bit++ {
		if flag == 1<<bit {
			return modifierNames[bit]
		}
	}
	return fmt.Sprintf("Unknown(0x%02X)", flag)
}

func hexBytes(raw []byte) []string {
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = fmt.Sprintf("%02X", b)
	}
	return out
}
