// Package hidkbd captures key-press events from a USB HID keyboard. It
// discovers a keyboard across a chain of device-access backends, claims its
// interrupt-transfer interface exclusively, and decodes the 8-byte
// boot-protocol reports it emits.
package hidkbd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/seagrayinc/hidkbd/pkg/backend"
	"github.com/seagrayinc/hidkbd/pkg/report"
)

// DefaultReadTimeout bounds each blocking read. It doubles as the
// cancellation-check interval of the poll loop.
const DefaultReadTimeout = 1000 * time.Millisecond

var defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Str("subsystem", "hidkbd").Logger()

// State is the capture lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateDiscovering
	StateClaiming
	StatePolling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateClaiming:
		return "claiming"
	case StatePolling:
		return "polling"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Event is one decoded, non-idle keyboard report: the set of keys currently
// held rather than a press/release transition. Reports with no modifiers and
// no keys are suppressed before they become events.
type Event struct {
	Modifiers []string `json:"modifiers"`
	Keys      []string `json:"keys"`
	RawHex    []string `json:"rawHex"`
}

// Options configures a Capture. The zero value selects the default backend
// chain, the default read timeout, and the package logger.
type Options struct {
	// ReadTimeout bounds each poll read; DefaultReadTimeout when zero.
	ReadTimeout time.Duration

	// Backends overrides the discovery chain, tried in order.
	Backends []backend.Backend

	// Logger receives discovery and lifecycle logging.
	Logger *zerolog.Logger
}

// Capture owns one keyboard session. New builds it idle; Open discovers and
// claims a device; Run polls it until cancellation or a fatal read error.
type Capture struct {
	log      zerolog.Logger
	timeout  time.Duration
	backends []backend.Backend

	session     backend.Session
	device      backend.DeviceInfo
	backendName string

	events     chan Event
	state      atomic.Int32
	iterations atomic.Uint64
}

// New returns an idle Capture. It touches no devices until Open.
func New(opts Options) *Capture {
	log := defaultLogger
	if opts.Logger != nil {
		log = *opts.Logger
	}
	timeout := opts.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	backends := opts.Backends
	if backends == nil {
		backends = backend.DefaultChain()
	}
	c := &Capture{
		log:      log,
		timeout:  timeout,
		backends: backends,
		events:   make(chan Event, 16),
	}
	c.state.Store(int32(StateIdle))
	return c
}

// Open discovers a keyboard across the backend chain and claims it. On any
// failure the capture is stopped; a failed claim is not retried here, the
// caller decides whether to start over.
func (c *Capture) Open() error {
	c.setState(StateDiscovering)
	b, info, err := selectKeyboard(&c.log, c.backends)
	if err != nil {
		c.setState(StateStopped)
		return err
	}

	c.setState(StateClaiming)
	sess, err := b.Open(info)
	if err != nil {
		c.setState(StateStopped)
		return fmt.Errorf("hidkbd: claim %s via %s: %w", info, b.Name(), err)
	}

	c.session = sess
	c.device = info
	c.backendName = b.Name()
	return nil
}

// Events is the stream of decoded non-idle reports. It is closed when Run
// returns.
func (c *Capture) Events() <-chan Event { return c.events }

// Device describes the claimed keyboard. Valid after a successful Open.
func (c *Capture) Device() backend.DeviceInfo { return c.device }

// Backend names the provider that claimed the device.
func (c *Capture) Backend() string { return c.backendName }

func (c *Capture) State() State { return State(c.state.Load()) }

// Iterations counts completed poll reads, timeouts included.
func (c *Capture) Iterations() uint64 { return c.iterations.Load() }

func (c *Capture) setState(s State) { c.state.Store(int32(s)) }

// Run polls the claimed keyboard until ctx is cancelled or a read fails
// fatally. The session is closed before Run returns on every path, and the
// events channel is closed after it. Cancellation latency is bounded by the
// read timeout.
func (c *Capture) Run(ctx context.Context) error {
	if c.session == nil {
		return errors.New("hidkbd: capture not open")
	}
	defer func() {
		c.closeSession()
		c.setState(StateStopped)
		close(c.events)
	}()

	c.setState(StatePolling)
	c.log.Info().
		Str("backend", c.backendName).
		Stringer("device", c.device).
		Dur("timeout", c.timeout).
		Msg("polling for reports")

	for {
		if ctx.Err() != nil {
			return nil
		}

		raw, err := c.session.Read(c.timeout)
		c.iterations.Add(1)
		if errors.Is(err, backend.ErrTimeout) {
			continue
		}
		if err != nil {
			c.log.Error().Err(err).Msg("session read failed")
			return fmt.Errorf("hidkbd: read report: %w", err)
		}

		decoded, err := report.Decode(raw)
		if err != nil {
			// Should not happen with a correctly sized endpoint read.
			c.log.Warn().Err(err).Strs("raw", decoded.RawHex).Msg("dropping malformed report")
			continue
		}
		if decoded.Empty() {
			// All keys released; suppressed to keep the stream quiet.
			continue
		}

		ev := Event{Modifiers: decoded.Modifiers, Keys: decoded.Keys, RawHex: decoded.RawHex}
		select {
		case c.events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Capture) closeSession() {
	if err := c.session.Close(); err != nil {
		// Teardown failures are logged, never surfaced.
		c.log.Warn().Err(err).Msg("closing session failed")
	}
}
