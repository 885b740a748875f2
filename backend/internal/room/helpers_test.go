package room

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
)

type mockConn struct {
	mu       sync.Mutex
	state    ConnState
	received []string
	closed   int
	sendErr  error
}

func newMockConn() *mockConn {
	return &mockConn{state: StateOpen}
}

func (m *mockConn) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, text)
	return nil
}

func (m *mockConn) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	m.state = StateClosed
	return nil
}

func (m *mockConn) setState(s ConnState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *mockConn) getReceived() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.received))
	copy(out, m.received)
	return out
}

func (m *mockConn) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var errBrokenPipe = errors.New("broken pipe")

// sequenceRoller returns its faces in order, repeating the last one.
type sequenceRoller struct {
	mu    sync.Mutex
	faces []int
}

func rollsOf(faces ...int) *sequenceRoller {
	return &sequenceRoller{faces: faces}
}

func (s *sequenceRoller) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.faces[0]
	if len(s.faces) > 1 {
		s.faces = s.faces[1:]
	}
	return v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
