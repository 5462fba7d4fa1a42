package backend

import (
	"fmt"

	usbhid "rafaelmartins.com/p/usbhid"
)

// USBHID is the pure-Go fallback provider. The library exposes no usage-pair
// metadata, so classification of its candidates rests on the product string
// alone, and its blocking GetInputReport runs through a report pump.
type USBHID struct{}

func NewUSBHID() *USBHID { return &USBHID{} }

func (b *USBHID) Name() string { return "usbhid" }

func (b *USBHID) Enumerate() ([]DeviceInfo, error) {
	devs, err := usbhid.Enumerate(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: usbhid enumerate: %v", ErrUnavailable, err)
	}
	infos := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		infos = append(infos, DeviceInfo{
			VendorID:     d.VendorId(),
			ProductID:    d.ProductId(),
			Path:         d.Path(),
			Manufacturer: d.Manufacturer(),
			Product:      d.Product(),
		})
	}
	return infos, nil
}

func (b *USBHID) Open(info DeviceInfo) (Session, error) {
	dev, err := usbhid.Get(func(d *usbhid.Device) bool {
		return d.Path() == info.Path
	}, true, true)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.Path, err)
	}
	return newPumpSession(dev.Close, func() ([]byte, error) {
		_, buf, err := dev.GetInputReport()
		if err != nil {
			return nil, fmt.Errorf("input report: %w", err)
		}
		return buf, nil
	}), nil
}
