// Package relay implements the push-delivery endpoint the notification
// deliverer talks to. It speaks a minimal JSON-over-TCP protocol: the client
// sends one envelope per message and the relay answers each with a status
// object. The reference relay only logs what a real messenger integration
// would send.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Envelope is a single push message as sent by the deliverer.
type Envelope struct {
	Telegram string `json:"telegram"`
	Message  string `json:"message"`
}

// Reply is the relay's answer to one envelope.
type Reply struct {
	Status string `json:"status"`
}

// StatusAccepted is the reply status for a message the relay took over.
const StatusAccepted = "accepted"

// Handler consumes accepted envelopes. The default handler logs them.
type Handler func(ctx context.Context, env Envelope)

// Server accepts deliverer connections and acknowledges their envelopes.
type Server struct {
	addr    string
	handler Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a relay server listening on addr once Serve is called.
// A nil handler logs each accepted envelope.
func NewServer(addr string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if handler == nil {
		log := logger
		handler = func(ctx context.Context, env Envelope) {
			log.Info("push message accepted",
				"telegram", env.Telegram,
				"message", env.Message)
		}
	}
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Serve listens on the configured address and handles connections until the
// context is cancelled or Shutdown is called.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("relay listening", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return err
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Addr returns the bound listener address, useful when listening on port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Shutdown closes the listener and all active connections. Safe to call
// more than once.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("failed to close relay listener", "error", err)
		}
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// handleConn reads envelopes until the client hangs up, acknowledging each.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.untrack(conn)
	defer func() { _ = conn.Close() }()

	log := s.logger.With("remote_addr", conn.RemoteAddr().String())

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(30 * time.Second)); err != nil {
			return
		}

		var env Envelope
		if err := dec.Decode(&env); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Debug("relay connection closed", "error", err)
			}
			return
		}

		s.handler(ctx, env)

		if err := enc.Encode(Reply{Status: StatusAccepted}); err != nil {
			log.Warn("failed to acknowledge envelope", "error", err)
			return
		}
	}
}
