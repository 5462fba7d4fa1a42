package backend

import (
	"fmt"
	"time"

	"github.com/karalabe/usb"
)

// HIDRaw accesses devices through the hidapi/libusb hybrid enumeration of
// karalabe/usb. Usage metadata is available but reads have no native
// timeout, so sessions run the blocking read through a report pump.
type HIDRaw struct{}

func NewHIDRaw() *HIDRaw { return &HIDRaw{} }

func (b *HIDRaw) Name() string { return "usbraw" }

func (b *HIDRaw) Enumerate() ([]DeviceInfo, error) {
	if !usb.Supported() {
		return nil, fmt.Errorf("%w: usb library built without device support", ErrUnavailable)
	}
	devs, err := usb.Enumerate(0, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: usb enumerate: %v", ErrUnavailable, err)
	}
	infos := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		infos = append(infos, DeviceInfo{
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			UsagePage:    d.UsagePage,
			Usage:        d.Usage,
			Interface:    d.Interface,
			Path:         d.Path,
			Manufacturer: d.Manufacturer,
			Product:      d.Product,
		})
	}
	return infos, nil
}

func (b *HIDRaw) Open(info DeviceInfo) (Session, error) {
	devs, err := usb.Enumerate(info.VendorID, info.ProductID)
	if err != nil {
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	for _, d := range devs {
		if d.Path != info.Path {
			continue
		}
		dev, err := d.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", info.Path, err)
		}
		return newPumpSession(dev.Close, func() ([]byte, error) {
			buf := make([]byte, readBufSize)
			n, err := dev.Read(buf)
			if err != nil {
				return nil, fmt.Errorf("usb read: %w", err)
			}
			return buf[:n], nil
		}), nil
	}
	return nil, fmt.Errorf("device %s no longer present", info.Path)
}

// pumpSession wraps a close function and a blocking read adapted by a pump.
// Close tears down the handle first so a read blocked inside the pump
// goroutine fails out instead of lingering.
type pumpSession struct {
	closeFn func() error
	p       *pump
}

func newPumpSession(closeFn func() error, read func() ([]byte, error)) *pumpSession {
	return &pumpSession{closeFn: closeFn, p: startPump(read)}
}

func (s *pumpSession) Read(timeout time.Duration) ([]byte, error) {
	return s.p.Read(timeout)
}

func (s *pumpSession) Close() error {
	err := s.closeFn()
	s.p.Stop()
	return err
}
