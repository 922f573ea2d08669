package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"sync/atomic"
)

// ErrServerClosed is returned by Run after its context is cancelled.
var ErrServerClosed = errors.New("control: server closed")

// State is the connection state of the server.
type State int32

const (
	// StateStopped means Run is not executing.
	StateStopped State = iota
	// StateListening means the server waits for a controller.
	StateListening
	// StateConnected means a controller is connected.
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateConnected:
		return "connected"
	default:
		return "stopped"
	}
}

// Config holds the server configuration.
type Config struct {
	// Network is "unix" (default) or "tcp".
	Network string
	// Address is the socket path or host:port. Defaults to DefaultAddress().
	Address string
	// Verbose logs every ignored line.
	Verbose bool
}

// Server accepts one controller connection at a time and applies its
// commands to a SpeakFlag. After a session ends a fresh listener is created
// for the next controller.
type Server struct {
	config   Config
	flag     SpeakFlag
	state    atomic.Int32
	sessions atomic.Int64

	mu   sync.Mutex
	addr net.Addr
}

// NewServer creates a new Server with the given configuration.
func NewServer(config Config) *Server {
	if config.Network == "" {
		config.Network = "unix"
	}
	if config.Address == "" {
		config.Address = DefaultAddress()
	}
	return &Server{config: config}
}

// SpeakActive reports whether speech output is currently permitted.
func (s *Server) SpeakActive() bool {
	return s.flag.Active()
}

// Flag returns the flag written by the server.
func (s *Server) Flag() *SpeakFlag {
	return &s.flag
}

// State returns the current connection state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Sessions returns the number of controller sessions accepted so far.
func (s *Server) Sessions() int64 {
	return s.sessions.Load()
}

// Addr returns the address of the current listener, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run loops forever: listen, accept one controller, serve it until it
// closes, then listen again. Reads have no timeout. Run returns
// ErrServerClosed once ctx is cancelled, or the error that prevented it
// from listening.
func (s *Server) Run(ctx context.Context) error {
	defer s.state.Store(int32(StateStopped))

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ErrServerClosed
			}
			return err
		}

		s.serve(ctx, newSession(conn))

		if ctx.Err() != nil {
			return ErrServerClosed
		}
	}
}

// accept opens a listener, waits for one connection and closes the
// listener again.
func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	if s.config.Network == "unix" {
		if err := removeStaleSocket(s.config.Address); err != nil {
			return nil, err
		}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, s.config.Network, s.config.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.config.Address, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.state.Store(int32(StateListening))

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	conn, err := ln.Accept()
	ln.Close()

	s.mu.Lock()
	s.addr = nil
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	return conn, nil
}

// removeStaleSocket removes a socket left at path by an earlier listener.
// Anything else at path is left alone and Listen reports the conflict.
func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

// serve reads commands until <CLOSE>, end of stream or a read error.
func (s *Server) serve(ctx context.Context, sess *Session) {
	s.sessions.Add(1)
	s.state.Store(int32(StateConnected))
	log.Printf("control: controller connected")

	stop := context.AfterFunc(ctx, func() { sess.Close() })
	defer stop()
	defer sess.Close()

	r := bufio.NewReader(sess.conn)
	for {
		line, err := readLine(r)
		if errors.Is(err, errLineTooLong) {
			if s.config.Verbose {
				log.Printf("control: ignoring line longer than %d bytes", MaxLineLength)
			}
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !sess.Closed() {
				log.Printf("control: read: %v", err)
			}
			break
		}

		switch line {
		case CmdStart:
			s.flag.set(true)
		case CmdStop:
			s.flag.set(false)
		case CmdClose:
			log.Printf("control: controller closed the session")
			return
		default:
			if s.config.Verbose {
				log.Printf("control: ignoring %q", line)
			}
		}
	}

	log.Printf("control: controller disconnected")
}
