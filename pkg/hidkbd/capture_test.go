package hidkbd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seagrayinc/hidkbd/pkg/backend"
)

func newTestCapture(t *testing.T, sess *backend.MockSession) *Capture {
	t.Helper()
	m := &backend.Mock{
		Devices: []backend.DeviceInfo{{VendorID: 1, ProductID: 2, UsagePage: 0x07, Usage: 0x06, Path: "test"}},
		Sess:    sess,
	}
	c := New(Options{
		ReadTimeout: 5 * time.Millisecond,
		Backends:    []backend.Backend{m},
		Logger:      &testLogger,
	})
	require.NoError(t, c.Open())
	return c
}

func runCapture(ctx context.Context, c *Capture) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	return errc
}

func collect(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestCaptureEmitsKeyEvents(t *testing.T) {
	sess := &backend.MockSession{Script: []backend.MockRead{
		{Data: []byte{0x00, 0x00, 0x0B, 0, 0, 0, 0, 0}},
		{Data: []byte{0x02, 0x00, 0x0B, 0, 0, 0, 0, 0}},
	}}
	c := newTestCapture(t, sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := runCapture(ctx, c)

	var events []Event
	for ev := range c.Events() {
		events = append(events, ev)
		if len(events) == 2 {
			cancel()
		}
	}
	require.NoError(t, <-errc)

	require.Len(t, events, 2)
	assert.Equal(t, []string{"H"}, events[0].Keys)
	assert.Empty(t, events[0].Modifiers)
	assert.Equal(t, []string{"Left Shift"}, events[1].Modifiers)
	assert.Equal(t, []string{"H"}, events[1].Keys)
	assert.Equal(t, []string{"02", "00", "0B", "00", "00", "00", "00", "00"}, events[1].RawHex)
}

func TestCaptureSuppressesIdleReports(t *testing.T) {
	sess := &backend.MockSession{Script: []backend.MockRead{
		{Data: make([]byte, 8)}, // all released, suppressed
		{Data: []byte{0x00, 0x00, 0x04, 0, 0, 0, 0, 0}},
		{Data: make([]byte, 8)},
	}}
	c := newTestCapture(t, sess)

	ctx, cancel := context.WithCancel(context.Background())
	errc := runCapture(ctx, c)

	ev := <-c.Events()
	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"A"}, ev.Keys)
}

func TestCaptureTimeoutAdvancesWithoutEvent(t *testing.T) {
	sess := &backend.MockSession{Script: []backend.MockRead{
		{}, // timed-out read
		{},
		{},
	}}
	c := newTestCapture(t, sess)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	errc := runCapture(ctx, c)

	events := collect(c.Events())
	require.NoError(t, <-errc)

	assert.Empty(t, events)
	assert.GreaterOrEqual(t, c.Iterations(), uint64(3))
	assert.Equal(t, StateStopped, c.State())
	assert.True(t, sess.Closed())
}

func TestCaptureDropsMalformedReport(t *testing.T) {
	sess := &backend.MockSession{Script: []backend.MockRead{
		{Data: []byte{0x00, 0x00, 0x0B}}, // short, dropped
		{Data: []byte{0x00, 0x00, 0x0C, 0, 0, 0, 0, 0}},
	}}
	c := newTestCapture(t, sess)

	ctx, cancel := context.WithCancel(context.Background())
	errc := runCapture(ctx, c)

	ev := <-c.Events()
	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"I"}, ev.Keys)
}

func TestCaptureFatalReadError(t *testing.T) {
	readErr := errors.New("endpoint stalled")
	sess := &backend.MockSession{Script: []backend.MockRead{
		{Err: readErr},
	}}
	c := newTestCapture(t, sess)

	errc := runCapture(context.Background(), c)
	collect(c.Events())

	err := <-errc
	require.ErrorIs(t, err, readErr)
	assert.Equal(t, StateStopped, c.State())
	assert.True(t, sess.Closed())
}

func TestCaptureCancellationClosesSession(t *testing.T) {
	sess := &backend.MockSession{} // quiet device, timeouts forever
	c := newTestCapture(t, sess)

	ctx, cancel := context.WithCancel(context.Background())
	errc := runCapture(ctx, c)

	time.Sleep(20 * time.Millisecond)
	cancel()

	require.NoError(t, <-errc)
	assert.Equal(t, StateStopped, c.State())
	assert.True(t, sess.Closed())
}

func TestCaptureOpenNoKeyboard(t *testing.T) {
	c := New(Options{
		Backends: []backend.Backend{
			&backend.Mock{Label: "one", EnumerateErr: backend.ErrUnavailable},
			&backend.Mock{Label: "two"},
		},
		Logger: &testLogger,
	})
	err := c.Open()
	require.ErrorIs(t, err, ErrNoKeyboard)
	assert.Equal(t, StateStopped, c.State())
}

func TestCaptureOpenClaimFailure(t *testing.T) {
	claimErr := errors.New("interface busy")
	m := &backend.Mock{
		Devices: []backend.DeviceInfo{{UsagePage: 0x07, Usage: 0x06}},
		OpenErr: claimErr,
	}
	c := New(Options{Backends: []backend.Backend{m}, Logger: &testLogger})

	err := c.Open()
	require.ErrorIs(t, err, claimErr)
	assert.Equal(t, StateStopped, c.State())
	assert.Equal(t, 1, m.OpenCount()) // no automatic retry
}

func TestCaptureStateProgression(t *testing.T) {
	sess := &backend.MockSession{}
	c := New(Options{
		ReadTimeout: 5 * time.Millisecond,
		Backends: []backend.Backend{&backend.Mock{
			Devices: []backend.DeviceInfo{{UsagePage: 0x07, Usage: 0x06}},
			Sess:    sess,
		}},
		Logger: &testLogger,
	})
	assert.Equal(t, StateIdle, c.State())

	require.NoError(t, c.Open())

	ctx, cancel := context.WithCancel(context.Background())
	errc := runCapture(ctx, c)

	require.Eventually(t, func() bool { return c.State() == StatePolling }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
	assert.Equal(t, StateStopped, c.State())
}

func TestCaptureRunWithoutOpen(t *testing.T) {
	c := New(Options{Logger: &testLogger})
	err := c.Run(context.Background())
	require.Error(t, err)
}
