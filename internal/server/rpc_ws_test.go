package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"

	"github.com/ptimer/ptimer/common"
)

type fakeTicks struct {
	ch chan time.Time
}

func (f *fakeTicks) Subscribe() (<-chan time.Time, func()) {
	return f.ch, func() {}
}

// newTestWebServer starts an httptest server over a fresh fixture and
// returns the websocket URL and the web server.
func newTestWebServer(t *testing.T, ticks TickSource) (string, *WebServer) {
	t.Helper()
	f := newRPCFixture(t)
	ws := NewWebServer("127.0.0.1:0", f.rs, NewRPCNotifier(nil), ticks, nil)
	srv := httptest.NewServer(ws.handler())
	t.Cleanup(func() {
		ws.notifier.StopAll()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + common.RPCWSPath, ws
}

func dialWS(ctx context.Context, t *testing.T, url, token string) *cws.Conn {
	t.Helper()
	conn, _, err := cws.Dial(ctx, url, &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close(cws.StatusNormalClosure, "") })
	return conn
}

func waitForCount(t *testing.T, n *RPCNotifier, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d registered servers, got %d", want, n.Count())
}

func readMessage(ctx context.Context, t *testing.T, conn *cws.Conn) map[string]any {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("WebSocket read failed: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	return msg
}

func TestWebSocketEndpoint_AuthRequired(t *testing.T) {
	url, _ := newTestWebServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, header := range []http.Header{nil, {"Authorization": []string{"Bearer wrong-token"}}} {
		_, resp, err := cws.Dial(ctx, url, &cws.DialOptions{HTTPHeader: header})
		if err == nil {
			t.Fatal("expected error for unauthorized WebSocket connection")
		}
		if resp != nil && resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	}
}

func TestWebSocketEndpoint_Requests(t *testing.T) {
	url, _ := newTestWebServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(ctx, t, url, testSecret)

	for i, method := range []string{common.MethodGetVersion, common.MethodTimerList, "nonexistent.method"} {
		data, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "method": method, "id": i + 1})
		if err := conn.Write(ctx, cws.MessageText, data); err != nil {
			t.Fatalf("write %s failed: %v", method, err)
		}
		resp := readMessage(ctx, t, conn)
		if int(resp["id"].(float64)) != i+1 {
			t.Fatalf("expected id %d, got %v", i+1, resp["id"])
		}
		if method == "nonexistent.method" {
			errObj, ok := resp["error"].(map[string]any)
			if !ok || errObj["code"].(float64) != -32601 {
				t.Fatalf("expected method not found, got %v", resp)
			}
			continue
		}
		if resp["result"] == nil {
			t.Fatalf("%s: expected result, got error: %v", method, resp["error"])
		}
	}
}

func TestWebSocketEndpoint_CompletedPush(t *testing.T) {
	url, ws := newTestWebServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(ctx, t, url, testSecret)
	waitForCount(t, ws.notifier, 1)

	ws.notifier.NotifyCompleted("t1", "eggs")

	msg := readMessage(ctx, t, conn)
	if msg["method"] != common.NotifyTimerCompleted {
		t.Fatalf("expected %s, got %v", common.NotifyTimerCompleted, msg["method"])
	}
	if msg["id"] != nil {
		t.Fatalf("expected no id for notification, got %v", msg["id"])
	}
	params, ok := msg["params"].(map[string]any)
	if !ok || params["id"] != "t1" || params["label"] != "eggs" {
		t.Fatalf("unexpected params %v", msg["params"])
	}
}

func TestWebSocketEndpoint_UnregisterOnDisconnect(t *testing.T) {
	url, ws := newTestWebServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, url, &cws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + testSecret}},
	})
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	waitForCount(t, ws.notifier, 1)
	conn.Close(cws.StatusNormalClosure, "")
	waitForCount(t, ws.notifier, 0)
}

func TestWebSocketEndpoint_TickThrottled(t *testing.T) {
	ticks := &fakeTicks{ch: make(chan time.Time)}
	url, ws := newTestWebServer(t, ticks)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialWS(ctx, t, url, testSecret)
	waitForCount(t, ws.notifier, 1)

	go ws.forwardTicks(ctx)
	// three ticks within one second and one in the next
	for _, ms := range []int64{10_000, 10_100, 10_900, 11_000} {
		ticks.ch <- time.UnixMilli(ms)
	}

	for _, want := range []float64{10_000, 11_000} {
		msg := readMessage(ctx, t, conn)
		if msg["method"] != common.NotifyTick {
			t.Fatalf("expected %s, got %v", common.NotifyTick, msg["method"])
		}
		params := msg["params"].(map[string]any)
		if params["nowEpochMs"] != want {
			t.Fatalf("expected tick at %v, got %v", want, params["nowEpochMs"])
		}
	}
}
