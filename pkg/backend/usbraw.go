package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// USBRaw accesses devices at the USB descriptor level through libusb. It
// cannot see HID usage pages, so enumeration walks each device's
// configuration descriptors instead, accepting the first HID-class interface
// that exposes an interrupt IN endpoint. Opening detaches any kernel driver
// bound to that interface and claims it exclusively.
type USBRaw struct{}

func NewUSBRaw() *USBRaw { return &USBRaw{} }

func (b *USBRaw) Name() string { return "libusb" }

func (b *USBRaw) Enumerate() ([]DeviceInfo, error) {
	uctx := gousb.NewContext()
	defer uctx.Close()

	var infos []DeviceInfo
	devs, err := uctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if info, ok := bootCandidate(desc); ok {
			infos = append(infos, info)
		}
		return false // walk descriptors only, never open here
	})
	for _, d := range devs {
		d.Close()
	}
	if err != nil && len(infos) == 0 {
		return nil, fmt.Errorf("%w: libusb enumerate: %v", ErrUnavailable, err)
	}
	return infos, nil
}

// bootCandidate walks a device's configuration descriptors looking for a
// HID-class interface with an interrupt IN endpoint. The first matching
// device/interface/endpoint triple wins.
func bootCandidate(desc *gousb.DeviceDesc) (DeviceInfo, bool) {
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class != gousb.ClassHID {
					continue
				}
				if _, ok := interruptIn(alt); !ok {
					continue
				}
				return DeviceInfo{
					VendorID:      uint16(desc.Vendor),
					ProductID:     uint16(desc.Product),
					Interface:     intf.Number,
					Path:          fmt.Sprintf("%d:%d", desc.Bus, desc.Address),
					BootInterface: true,
				}, true
			}
		}
	}
	return DeviceInfo{}, false
}

func interruptIn(alt gousb.InterfaceSetting) (gousb.EndpointDesc, bool) {
	for _, ep := range alt.Endpoints {
		if ep.Direction == gousb.EndpointDirectionIn && ep.TransferType == gousb.TransferTypeInterrupt {
			return ep, true
		}
	}
	return gousb.EndpointDesc{}, false
}

func (b *USBRaw) Open(info DeviceInfo) (Session, error) {
	var bus, addr int
	if _, err := fmt.Sscanf(info.Path, "%d:%d", &bus, &addr); err != nil {
		return nil, fmt.Errorf("bad device path %q: %w", info.Path, err)
	}

	uctx := gousb.NewContext()
	devs, err := uctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Bus == bus && desc.Address == addr
	})
	if len(devs) == 0 {
		uctx.Close()
		if err != nil {
			return nil, fmt.Errorf("open device %s: %w", info.Path, err)
		}
		return nil, fmt.Errorf("device %s no longer present", info.Path)
	}
	dev := devs[0]
	for _, d := range devs[1:] {
		d.Close()
	}

	// Hand the interface over from the kernel driver before claiming it.
	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("detach kernel driver: %w", err)
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("active configuration: %w", err)
	}
	cfg, err := dev.Config(cfgNum)
	if err != nil {
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("configuration %d: %w", cfgNum, err)
	}
	intf, err := cfg.Interface(info.Interface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("claim interface %d: %w", info.Interface, err)
	}

	epDesc, ok := interruptIn(intf.Setting)
	if !ok {
		intf.Close()
		cfg.Close()
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("interface %d has no interrupt IN endpoint", info.Interface)
	}
	in, err := intf.InEndpoint(epDesc.Number)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		uctx.Close()
		return nil, fmt.Errorf("endpoint %d: %w", epDesc.Number, err)
	}

	return &usbRawSession{uctx: uctx, dev: dev, cfg: cfg, intf: intf, in: in}, nil
}

type usbRawSession struct {
	uctx *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	in   *gousb.InEndpoint
}

func (s *usbRawSession) Read(timeout time.Duration) ([]byte, error) {
	size := s.in.Desc.MaxPacketSize
	if size <= 0 {
		size = readBufSize
	}
	buf := make([]byte, size)

	tctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := s.in.ReadContext(tctx, buf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, gousb.TransferTimedOut) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("interrupt transfer: %w", err)
	}
	return buf[:n], nil
}

// Close releases the claimed interface before closing the handle and the
// libusb context; auto-detach reattaches the kernel driver on release.
func (s *usbRawSession) Close() error {
	s.intf.Close()
	var errs error
	if err := s.cfg.Close(); err != nil {
		errs = errors.Join(errs, err)
	}
	if err := s.dev.Close(); err != nil {
		errs = errors.Join(errs, err)
	}
	if err := s.uctx.Close(); err != nil {
		errs = errors.Join(errs, err)
	}
	return errs
}
