package hidkbd

import (
	"github.com/seagrayinc/hidkbd/pkg/backend"
)

// BackendDevices is one backend's enumeration result.
type BackendDevices struct {
	Backend string
	Devices []backend.DeviceInfo
	Err     error
}

// ListDevices enumerates every backend in the default chain (or the given
// one) without opening anything. Backends that fail report their error in
// place; the walk continues.
func ListDevices(backends ...backend.Backend) []BackendDevices {
	if len(backends) == 0 {
		backends = backend.DefaultChain()
	}
	out := make([]BackendDevices, 0, len(backends))
	for _, b := range backends {
		infos, err := b.Enumerate()
		out = append(out, BackendDevices{Backend: b.Name(), Devices: infos, Err: err})
	}
	return out
}
