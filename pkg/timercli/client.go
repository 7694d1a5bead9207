// Package timercli is the client side of the ptimer daemon's JSON-RPC API.
package timercli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/ptimer/ptimer/common"
)

var (
	// ErrTimerNotFound is returned when the daemon no longer has the timer.
	ErrTimerNotFound = errors.New("timer not found")
	// ErrPresetNotFound is returned for an unknown preset id.
	ErrPresetNotFound = errors.New("preset not found")
	// ErrPersistence is returned when the daemon could not save a change.
	ErrPersistence = errors.New("daemon storage unavailable")
	// ErrUnauthorized is returned when the token was rejected.
	ErrUnauthorized = errors.New("unauthorized: rpc token rejected")
)

// Client talks to a daemon over HTTP. It is safe for concurrent use.
type Client struct {
	addr  string
	token string
	hc    *http.Client
	ch    *jhttp.Channel
	rpc   *jrpc2.Client
}

// bearerClient adds the Authorization header to every request.
type bearerClient struct {
	token string
	hc    *http.Client
}

func (b bearerClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.token)
	rsp, err := b.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if rsp.StatusCode == http.StatusUnauthorized {
		rsp.Body.Close()
		return nil, ErrUnauthorized
	}
	return rsp, nil
}

// NewClient returns a client for the daemon listening on addr, which is
// either host:port or a full http URL.
func NewClient(addr, token string) *Client {
	hc := &http.Client{Timeout: 10 * time.Second}
	base := baseURL(addr)
	ch := jhttp.NewChannel(base+common.RPCPath, &jhttp.ChannelOptions{
		Client: bearerClient{token: token, hc: hc},
	})
	return &Client{
		addr:  base,
		token: token,
		hc:    hc,
		ch:    ch,
		rpc:   jrpc2.NewClient(ch, nil),
	}
}

func baseURL(addr string) string {
	addr = strings.TrimSuffix(addr, "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

func wsURL(base string) string {
	return "ws" + strings.TrimPrefix(base, "http") + common.RPCWSPath
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// wrapErr maps daemon error codes to the package's sentinel errors.
func wrapErr(method string, err error) error {
	if err == nil {
		return nil
	}
	var e *jrpc2.Error
	if errors.As(err, &e) {
		switch e.Code {
		case -32001:
			return fmt.Errorf("%s: %w", method, ErrTimerNotFound)
		case -32002:
			return fmt.Errorf("%s: %w: %s", method, ErrPresetNotFound, e.Message)
		case -32010:
			return fmt.Errorf("%s: %w: %s", method, ErrPersistence, e.Message)
		case -32600:
			return fmt.Errorf("%s: %w", method, ErrUnauthorized)
		}
		return fmt.Errorf("%s: %s", method, e.Message)
	}
	return fmt.Errorf("failed to invoke %s: %w", method, err)
}
