// Package server implements the listener and supervisor: it accepts TCP
// connections, spawns one session.Worker per connection, serializes every
// access to the shared history.Store behind one mutex, and drives graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/cu-ecen-aeld/aesdsocket-go/internal/history"
	"github.com/cu-ecen-aeld/aesdsocket-go/internal/session"
)

// Config is the listener's startup configuration.
type Config struct {
	// ListenAddr is the TCP address to bind, e.g. ":9000" for the
	// dual-stack/IPv6-preferred wildcard bind. The network is always "tcp",
	// so "0.0.0.0:9000" is also treated as a wildcard and bound dual-stack
	// where the host supports it.
	ListenAddr string
	// MaxRxBuffer caps a connection's receive buffer growth in bytes.
	// Zero means unbounded, matching the original unbounded-growth design.
	MaxRxBuffer int
}

// Server is the Listener & Supervisor component: one history.Store shared
// by every Worker it spawns, one mutex serializing all access to it, and a
// registry tracking live workers for reaping and shutdown.
type Server struct {
	cfg   Config
	store history.Store
	mu    sync.Mutex // the one process-wide lock serializing all store access
	log   *zap.SugaredLogger

	reg *registry

	ready chan struct{}
	addr  net.Addr
}

// New constructs a Server. Run closes store during shutdown, after every
// worker has been joined.
func New(cfg Config, store history.Store, log *zap.SugaredLogger) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		log:   log,
		reg:   newRegistry(),
		ready: make(chan struct{}),
	}
}

// Mutex returns the shared lock protecting the history store, for use by a
// co-located writer (the periodic timestamp task) that must serialize its
// appends against session workers on equal footing.
func (s *Server) Mutex() *sync.Mutex {
	return &s.mu
}

// Addr blocks until the listener is bound and returns its address. Useful
// for tests that bind an ephemeral port ("host:0").
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.addr
}

// reuseAddrControl sets SO_REUSEADDR on the listening socket before bind,
// matching the original server's address-reuse setup.
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// Run binds the listener and accepts connections until ctx is canceled.
// Cancellation closes the listener to unblock Accept -- the idiomatic Go
// analogue of the signal handler shutting down the listening socket to
// interrupt a blocking accept(2). Run returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}

	s.addr = ln.Addr()
	close(s.ready)

	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stopWatch:
		}
	}()
	defer close(stopWatch)

	s.log.Infow("listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// The shutdown path closed the listening socket to unblock
				// us; treat this exactly like the requested-shutdown case,
				// not a fault.
				break
			}
			s.log.Errorw("accept failed", "error", err)
			break
		}

		s.spawn(conn)
		s.reap()
	}

	return s.shutdown()
}

// spawn allocates a registry entry for conn, links it in, and starts its
// worker goroutine.
func (s *Server) spawn(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	s.log.Infow("Accepted connection", "addr", addr)

	w := session.NewWorker(conn, s.store, &s.mu, s.log, s.cfg.MaxRxBuffer)
	e := &entry{worker: w, addr: addr, done: make(chan struct{})}
	s.reg.add(e)

	go func() {
		defer close(e.done)

		if err := w.Run(); err != nil {
			s.log.Debugw("connection ended", "addr", addr, "error", err)
		}
		_ = w.Close()
		s.log.Infow("Closed connection", "addr", addr)
	}()
}

// reap walks the registry and removes any worker whose goroutine has
// already finished. It never blocks on a still-running worker.
func (s *Server) reap() {
	s.reg.reapCompleted()
}

// shutdown joins every remaining worker, closing its connection first so a
// rogue client blocked in Read is kicked loose, then releases the store.
func (s *Server) shutdown() error {
	var errs []error

	for _, e := range s.reg.drainAll() {
		select {
		case <-e.done:
			// Worker already noticed its peer disconnect and closed itself.
		default:
			// Still running, likely blocked in Read -- force it loose.
			if err := e.worker.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", e.addr, err))
			}
		}
		<-e.done
	}

	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		s.log.Errorw("errors during shutdown", "error", err)
		return err
	}
	return nil
}
