package control

import (
	"net"
	"sync"
)

// Session is one connected controller.
type Session struct {
	conn   net.Conn
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

func newSession(conn net.Conn) *Session {
	return &Session{conn: conn}
}

// Close closes the underlying stream. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
