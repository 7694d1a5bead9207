package server

import (
	"context"
	"net/http"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/ptimer/ptimer/common"
)

// wsReadLimit caps a single inbound frame. Requests carry a timer id and a
// few fields at most.
const wsReadLimit = 64 << 10

// wsChannel carries one JSON-RPC message per websocket text frame for the
// lifetime of a push session.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func newWSChannel(ctx context.Context, conn *cws.Conn) *wsChannel {
	conn.SetReadLimit(wsReadLimit)
	return &wsChannel{conn: conn, ctx: ctx}
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "session ended")
}

// handleWS upgrades the request and serves JSON-RPC over the connection
// with push enabled, so the client receives timer.completed,
// timer.notificationCancelled and timer.tick until it disconnects.
func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Warning("web: websocket upgrade failed: %v", err)
		return
	}
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(newWSChannel(r.Context(), conn))
	s.notifier.Register(srv)
	s.l.Debug("web: push client connected from %s", r.RemoteAddr)

	if err := srv.Wait(); err != nil {
		s.l.Debug("web: push client %s: %v", r.RemoteAddr, err)
	}
	s.notifier.Unregister(srv)
}

// forwardTicks pushes timer.tick at most once per wall-clock second until
// ctx ends. Clients use it to keep their countdowns in step with the
// daemon's clock.
func (s *WebServer) forwardTicks(ctx context.Context) {
	if s.ticks == nil {
		return
	}
	ch, unsubscribe := s.ticks.Subscribe()
	defer unsubscribe()
	var lastSec int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-ch:
			if !ok {
				return
			}
			if sec := now.Unix(); sec != lastSec {
				lastSec = sec
				s.notifier.Broadcast(common.NotifyTick, &common.TickNotification{NowEpochMs: now.UnixMilli()})
			}
		}
	}
}

// TickSource hands out tick timestamps; tick.Broadcaster implements it.
type TickSource interface {
	Subscribe() (<-chan time.Time, func())
}
