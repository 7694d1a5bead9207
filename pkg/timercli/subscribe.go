package timercli

import (
	"context"
	"net/http"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"

	"github.com/ptimer/ptimer/common"
)

// Events receives daemon pushes. Nil callbacks are skipped.
type Events struct {
	OnCompleted func(common.CompletedNotification)
	OnCancelled func(common.CancelledNotification)
	OnTick      func(common.TickNotification)
}

func (ev Events) dispatch(req *jrpc2.Request) {
	switch req.Method() {
	case common.NotifyTimerCompleted:
		var n common.CompletedNotification
		if ev.OnCompleted != nil && req.UnmarshalParams(&n) == nil {
			ev.OnCompleted(n)
		}
	case common.NotifyNotificationCancelled:
		var n common.CancelledNotification
		if ev.OnCancelled != nil && req.UnmarshalParams(&n) == nil {
			ev.OnCancelled(n)
		}
	case common.NotifyTick:
		var n common.TickNotification
		if ev.OnTick != nil && req.UnmarshalParams(&n) == nil {
			ev.OnTick(n)
		}
	}
}

// wsChannel adapts a websocket connection to a jrpc2 channel.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func (c *wsChannel) Send(data []byte) error {
	return c.conn.Write(c.ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusNormalClosure, "")
}

// Subscribe opens a websocket to the daemon and delivers pushes to ev until
// ctx ends or the daemon closes the connection. No callback runs after
// Subscribe returns.
func (c *Client) Subscribe(ctx context.Context, ev Events) error {
	conn, _, err := cws.Dial(ctx, wsURL(c.addr), &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.token}},
	})
	if err != nil {
		return wrapErr("subscribe", err)
	}
	stopped := make(chan error, 1)
	cli := jrpc2.NewClient(&wsChannel{conn: conn, ctx: ctx}, &jrpc2.ClientOptions{
		OnNotify: ev.dispatch,
		OnStop: func(_ *jrpc2.Client, err error) {
			stopped <- err
		},
	})
	select {
	case <-ctx.Done():
	case <-stopped:
	}
	// Close waits for notifications still being delivered to ev.
	_ = cli.Close()
	return nil
}
