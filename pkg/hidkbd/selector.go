package hidkbd

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seagrayinc/hidkbd/pkg/backend"
)

// ErrNoKeyboard is returned when every backend has been tried and none
// yielded a keyboard candidate.
var ErrNoKeyboard = errors.New("hidkbd: no keyboard device found")

// IsKeyboard reports whether an enumerated device looks like a keyboard:
// the standard boot keyboard usage pair (0x07, 0x06), the generic-desktop
// keyboard pair (0x01, 0x06), a descriptor-level boot-interface match, or a
// product string mentioning "key" for devices that misreport usage pages.
func IsKeyboard(info backend.DeviceInfo) bool {
	if info.BootInterface {
		return true
	}
	if info.Usage == 0x06 && (info.UsagePage == 0x07 || info.UsagePage == 0x01) {
		return true
	}
	// "key" also matches "keyboard".
	return strings.Contains(strings.ToLower(info.Product), "key")
}

// selectKeyboard walks the backend chain in priority order and returns the
// first keyboard candidate of the first backend that yields one. A backend
// that fails to enumerate is logged and skipped, never fatal to the search.
func selectKeyboard(log *zerolog.Logger, backends []backend.Backend) (backend.Backend, backend.DeviceInfo, error) {
	for _, b := range backends {
		infos, err := b.Enumerate()
		if err != nil {
			log.Warn().Err(err).Str("backend", b.Name()).Msg("backend enumeration failed, trying next")
			continue
		}
		log.Debug().Str("backend", b.Name()).Int("devices", len(infos)).Msg("enumerated devices")
		for _, info := range infos {
			if IsKeyboard(info) {
				log.Info().Str("backend", b.Name()).Stringer("device", info).Msg("selected keyboard")
				return b, info, nil
			}
		}
	}
	return nil, backend.DeviceInfo{}, ErrNoKeyboard
}
