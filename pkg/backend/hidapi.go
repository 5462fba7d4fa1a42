package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/sstallion/go-hid"
)

// readBufSize is large enough for any boot-protocol keyboard report; real
// devices send 8 bytes but some firmwares pad to the endpoint packet size.
const readBufSize = 64

// HIDAPI accesses devices through the operating system's native HID API via
// hidapi. It sees usage-page metadata, so candidates can be classified
// without touching descriptors, and reads carry a native timeout.
type HIDAPI struct {
	initOnce sync.Once
	initErr  error
}

func NewHIDAPI() *HIDAPI { return &HIDAPI{} }

func (b *HIDAPI) Name() string { return "hidapi" }

func (b *HIDAPI) init() error {
	b.initOnce.Do(func() {
		b.initErr = hid.Init()
	})
	return b.initErr
}

func (b *HIDAPI) Enumerate() ([]DeviceInfo, error) {
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("%w: hidapi init: %v", ErrUnavailable, err)
	}
	var infos []DeviceInfo
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		infos = append(infos, DeviceInfo{
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			UsagePage:    info.UsagePage,
			Usage:        info.Usage,
			Interface:    info.InterfaceNbr,
			Path:         info.Path,
			Manufacturer: info.MfrStr,
			Product:      info.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: hidapi enumerate: %v", ErrUnavailable, err)
	}
	return infos, nil
}

func (b *HIDAPI) Open(info DeviceInfo) (Session, error) {
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("%w: hidapi init: %v", ErrUnavailable, err)
	}
	dev, err := hid.OpenPath(info.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}
	return &hidapiSession{dev: dev}, nil
}

type hidapiSession struct {
	dev *hid.Device
}

func (s *hidapiSession) Read(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, readBufSize)
	n, err := s.dev.ReadWithTimeout(buf, timeout)
	if err != nil {
		return nil, fmt.Errorf("hid read: %w", err)
	}
	if n == 0 {
		// hid_read_timeout reports expiry as a zero-length read.
		return nil, ErrTimeout
	}
	return buf[:n], nil
}

func (s *hidapiSession) Close() error {
	return s.dev.Close()
}
