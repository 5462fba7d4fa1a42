package backend

import (
	"sync"
	"time"
)

// Mock is an in-memory Backend for tests.
type Mock struct {
	Label        string
	Devices      []DeviceInfo
	EnumerateErr error
	OpenErr      error
	Sess         *MockSession

	mu        sync.Mutex
	openCount int
}

func (m *Mock) Name() string {
	if m.Label == "" {
		return "mock"
	}
	return m.Label
}

func (m *Mock) Enumerate() ([]DeviceInfo, error) {
	if m.EnumerateErr != nil {
		return nil, m.EnumerateErr
	}
	return m.Devices, nil
}

func (m *Mock) Open(DeviceInfo) (Session, error) {
	m.mu.Lock()
	m.openCount++
	m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	return m.Sess, nil
}

func (m *Mock) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openCount
}

// MockRead is one scripted Read outcome. A nil Data with a nil Err stands
// for a timed-out read.
type MockRead struct {
	Data []byte
	Err  error
}

// MockSession replays a script of read outcomes. Once the script is
// exhausted, Read behaves like a quiet device: it waits out the timeout and
// reports ErrTimeout.
type MockSession struct {
	Script []MockRead

	mu     sync.Mutex
	next   int
	closed bool
}

func (s *MockSession) Read(timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.next >= len(s.Script) {
		s.mu.Unlock()
		time.Sleep(timeout)
		return nil, ErrTimeout
	}
	step := s.Script[s.next]
	s.next++
	s.mu.Unlock()

	if step.Err != nil {
		return nil, step.Err
	}
	if step.Data == nil {
		return nil, ErrTimeout
	}
	return step.Data, nil
}

func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MockSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
