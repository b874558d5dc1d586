package rcon

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"rcon-go/internal/logger"
)

// Handler executes one authenticated command and returns the reply text.
// It is called concurrently from every connection's goroutine.
type Handler interface {
	Handle(command string) string
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(command string) string

func (f HandlerFunc) Handle(command string) string {
	return f(command)
}

// Server accepts RCON connections and serves each one on its own goroutine.
type Server struct {
	password string
	handler  Handler

	mu       sync.Mutex
	listener net.Listener
	conns    map[*serverConn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer returns a server that authenticates with password and passes
// commands to handler.
func NewServer(password string, handler Handler) *Server {
	return &Server{
		password: password,
		handler:  handler,
		conns:    make(map[*serverConn]struct{}),
	}
}

// Start binds the port and runs the accept loop in the background.
func Start(port int, password string, handler Handler) (*Server, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d is out of range", ErrArgument, port)
	}

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on port %d: %w", ErrConnection, port, err)
	}

	s := NewServer(password, handler)
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, ErrServerClosed) {
			logger.Error("RCON server stopped", "error", err)
		}
	}()
	return s, nil
}

// Serve accepts connections on ln until Close is called. It always
// returns a non-nil error.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	logger.Info("RCON server listening", "addr", ln.Addr().String())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("%w: %w", ErrConnection, err)
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(2*backoff, time.Second)
			}
			logger.Warn("Accept failed", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		c := newServerConn(s, conn)
		if !s.track(c) {
			conn.Close()
			return ErrServerClosed
		}
		go c.serve()
	}
}

// Close stops the accept loop, closes every live connection and waits
// for their goroutines to return.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for c := range s.conns {
		c.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections reports the number of open connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(c *serverConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *serverConn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}
