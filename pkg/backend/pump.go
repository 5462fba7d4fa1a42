package backend

import (
	"time"
)

// pump adapts a blocking report-read function to timed reads. A single
// goroutine performs the blocking reads and hands reports over a channel;
// Read selects against that channel with a timer. The goroutine exits when
// the underlying read fails, which tearing down the device handle guarantees.
type pump struct {
	reports chan []byte
	stop    chan struct{}
	done    chan struct{}
	err     error // set before done is closed
}

func startPump(read func() ([]byte, error)) *pump {
	p := &pump{
		reports: make(chan []byte),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		for {
			buf, err := read()
			if err != nil {
				p.err = err
				return
			}
			select {
			case p.reports <- buf:
			case <-p.stop:
				return
			}
		}
	}()
	return p
}

// Read waits up to timeout for one report. Expiry returns ErrTimeout; a
// failed underlying read returns its error.
func (p *pump) Read(timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case buf := <-p.reports:
		return buf, nil
	case <-p.done:
		if p.err == nil {
			return nil, ErrClosed
		}
		return nil, p.err
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// Stop releases the pump goroutine if it is parked on a report hand-off.
// Callers close the device handle as well, which unblocks a pending read.
func (p *pump) Stop() {
	close(p.stop)
}
