package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
)

// StubHTTPServer implements the server's httpServer seam for tests. ListenAndServe blocks
// until Shutdown unless ListenErr is set.
type StubHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error

	listenCalls   atomic.Int32
	shutdownCalls atomic.Int32
	stopped       chan struct{}
	stopOnce      atomic.Bool
}

// NewStubHTTPServer returns a stub that serves handler at addr.
func NewStubHTTPServer(addr string, handler http.Handler) *StubHTTPServer {
	return &StubHTTPServer{AddrVal: addr, HandlerVal: handler, stopped: make(chan struct{})}
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.listenCalls.Add(1)
	if s.ListenErr != nil {
		return s.ListenErr
	}
	if s.stopped == nil {
		return http.ErrServerClosed
	}
	<-s.stopped
	return http.ErrServerClosed
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.shutdownCalls.Add(1)
	if s.stopped != nil && s.stopOnce.CompareAndSwap(false, true) {
		close(s.stopped)
	}
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string {
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	return s.HandlerVal
}

// ListenCalls and ShutdownCalls are safe to read while the server goroutine runs.
func (s *StubHTTPServer) ListenCalls() int   { return int(s.listenCalls.Load()) }
func (s *StubHTTPServer) ShutdownCalls() int { return int(s.shutdownCalls.Load()) }

// BlockingHTTPServer allows simulating a shutdown that waits on an unblock channel.
type BlockingHTTPServer struct {
	AddrVal    string
	HandlerVal http.Handler
	Unblock    chan struct{}

	shutdownCalls atomic.Int32
}

func (b *BlockingHTTPServer) ListenAndServe() error {
	return http.ErrServerClosed
}

func (b *BlockingHTTPServer) Shutdown(ctx context.Context) error {
	b.shutdownCalls.Add(1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.Unblock:
		return nil
	}
}

func (b *BlockingHTTPServer) Addr() string {
	return b.AddrVal
}

func (b *BlockingHTTPServer) Handler() http.Handler {
	return b.HandlerVal
}

func (b *BlockingHTTPServer) ShutdownCalls() int { return int(b.shutdownCalls.Load()) }

// ErrListen is returned by ErrHTTPServer.ListenAndServe.
var ErrListen = errors.New("listen failure")

// ErrHTTPServer fails on ListenAndServe; Shutdown increments a counter.
type ErrHTTPServer struct {
	shutdownCalls atomic.Int32
}

func (e *ErrHTTPServer) ListenAndServe() error {
	return ErrListen
}

func (e *ErrHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	e.shutdownCalls.Add(1)
	return nil
}

func (e *ErrHTTPServer) Addr() string {
	return ":0"
}

func (e *ErrHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}

func (e *ErrHTTPServer) ShutdownCalls() int { return int(e.shutdownCalls.Load()) }
