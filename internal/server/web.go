package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/pkg/logger"
)

// WebServer serves the JSON-RPC API over HTTP and websocket.
type WebServer struct {
	addr     string
	l        logger.Logger
	rpc      *RPCServer
	notifier *RPCNotifier
	ticks    TickSource
	server   *http.Server
	mu       sync.Mutex
}

// NewWebServer returns a server for addr. notifier receives every websocket
// connection; ticks may be nil to disable timer.tick pushes.
func NewWebServer(addr string, rpc *RPCServer, notifier *RPCNotifier, ticks TickSource, l logger.Logger) *WebServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &WebServer{addr: addr, l: l, rpc: rpc, notifier: notifier, ticks: ticks}
}

func (s *WebServer) handler() http.Handler {
	guard := newTokenGuard(s.rpc.secret, s.l)
	mux := http.NewServeMux()
	mux.Handle(common.RPCPath, guard.wrap(s.rpc.bridge))
	mux.Handle(common.RPCWSPath, guard.wrap(http.HandlerFunc(s.handleWS)))
	return mux
}

// Listen binds the configured address.
func (s *WebServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.addr)
}

// Serve serves on ln until Shutdown. Tick pushes run for as long as ctx.
func (s *WebServer) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.server = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	go s.forwardTicks(ctx)
	s.l.Info("web: serving JSON-RPC on %s", ln.Addr())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and disconnects websocket clients.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.StopAll()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
