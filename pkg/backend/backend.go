// Package backend provides device-access providers for USB HID keyboards.
//
// Each Backend wraps one underlying device-access library behind a uniform
// enumerate/open/read/close surface so callers can try providers in a fixed
// priority order without library-specific branching.
package backend

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by backends may be tested with errors.Is.
var (
	// ErrUnavailable means the backend itself failed to initialize or
	// enumerate. The caller should move on to the next backend.
	ErrUnavailable = errors.New("backend: unavailable")

	// ErrTimeout means no report arrived within the read window. It is the
	// expected result of a quiet device, not a fault.
	ErrTimeout = errors.New("backend: read timed out")

	// ErrClosed means the session was torn down while a read was pending.
	ErrClosed = errors.New("backend: session closed")
)

// DeviceInfo describes one enumerated device candidate. It is immutable once
// produced; Path (or VendorID/ProductID plus Interface, depending on the
// backend) is what Open uses to locate the device again.
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	UsagePage    uint16
	Usage        uint16
	Interface    int
	Path         string
	Manufacturer string
	Product      string

	// BootInterface is set by descriptor-level backends whose enumeration
	// already matched a HID-class interface with an interrupt IN endpoint.
	// Such candidates are keyboards regardless of usage-pair metadata,
	// which descriptor-level enumeration cannot see.
	BootInterface bool
}

func (i DeviceInfo) String() string {
	return fmt.Sprintf("VID:0x%04X PID:0x%04X usage=0x%04X/0x%04X %q", i.VendorID, i.ProductID, i.UsagePage, i.Usage, i.Product)
}

// Session is an open, exclusively owned keyboard device. At most one reader
// may use a session at a time, and Close must run on every exit path.
type Session interface {
	// Read blocks up to timeout for one input report. On expiry it returns
	// ErrTimeout; any other error is fatal to the session.
	Read(timeout time.Duration) ([]byte, error)

	// Close releases the claimed interface (where one was claimed) and the
	// underlying handle. Safe to call once per session.
	Close() error
}

// Backend enumerates and opens HID keyboard devices through one underlying
// access library.
type Backend interface {
	Name() string
	Enumerate() ([]DeviceInfo, error)
	Open(info DeviceInfo) (Session, error)
}

// DefaultChain returns the backends in discovery priority order: the native
// HID API first, then the two libusb-level providers, then the pure-Go
// fallback.
func DefaultChain() []Backend {
	return []Backend{
		NewHIDAPI(),
		NewUSBRaw(),
		NewHIDRaw(),
		NewUSBHID(),
	}
}
