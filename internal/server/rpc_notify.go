package server

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"

	"github.com/ptimer/ptimer/common"
	"github.com/ptimer/ptimer/internal/notify"
	"github.com/ptimer/ptimer/pkg/logger"
)

// RPCNotifier keeps the set of connected websocket jrpc2 servers and pushes
// notifications to all of them. It implements notify.Notifier.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
}

// NewRPCNotifier creates a notifier with no connected servers.
func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
	}
}

// Register adds a server to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

// Unregister removes a server from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// Broadcast pushes a notification to every registered server. Servers that
// fail to receive it are dropped.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		if err := srv.Notify(context.Background(), method, params); err != nil {
			n.log.Warning("rpc: push %s failed: %v", method, err)
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// NotifyCompleted pushes timer.completed.
func (n *RPCNotifier) NotifyCompleted(id, label string) {
	n.Broadcast(common.NotifyTimerCompleted, &common.CompletedNotification{ID: id, Label: label})
}

// CancelNotification pushes timer.notificationCancelled.
func (n *RPCNotifier) CancelNotification(id string) {
	n.Broadcast(common.NotifyNotificationCancelled, &common.CancelledNotification{ID: id})
}

// StopAll stops every registered server. Hijacked websocket connections
// are not closed by http.Server.Shutdown, so the web server calls this.
func (n *RPCNotifier) StopAll() {
	n.mu.Lock()
	servers := n.servers
	n.servers = make(map[*jrpc2.Server]struct{})
	n.mu.Unlock()
	for srv := range servers {
		srv.Stop()
	}
}

// Count returns the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}

var _ notify.Notifier = (*RPCNotifier)(nil)
