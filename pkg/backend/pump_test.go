package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPumpDeliversReports(t *testing.T) {
	reports := make(chan []byte, 2)
	reports <- []byte{0x00, 0x00, 0x0B, 0, 0, 0, 0, 0}
	reports <- []byte{0x02, 0x00, 0x0B, 0, 0, 0, 0, 0}
	defer close(reports)

	p := startPump(func() ([]byte, error) {
		r, ok := <-reports
		if !ok {
			return nil, errors.New("closed")
		}
		return r, nil
	})
	defer p.Stop()

	buf, err := p.Read(time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x0B, 0, 0, 0, 0, 0}, buf)

	buf, err = p.Read(time.Second)
	require.NoError(t, err)
	require.Equal(t, byte(0x02), buf[0])
}

func TestPumpTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	p := startPump(func() ([]byte, error) {
		<-block
		return nil, errors.New("closed")
	})
	defer p.Stop()

	_, err := p.Read(5 * time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestPumpSurfacesReadError(t *testing.T) {
	readErr := errors.New("endpoint stalled")
	p := startPump(func() ([]byte, error) {
		return nil, readErr
	})
	defer p.Stop()

	_, err := p.Read(time.Second)
	require.ErrorIs(t, err, readErr)
}

func TestPumpStopReleasesPendingHandoff(t *testing.T) {
	p := startPump(func() ([]byte, error) {
		return []byte{0}, nil // always has a report ready to hand off
	})
	p.Stop()

	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("pump goroutine did not exit after Stop")
	}
}
