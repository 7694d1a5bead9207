package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/creachadair/jrpc2"

	"github.com/ptimer/ptimer/pkg/logger"
)

// rpcErrorBody is a JSON-RPC 2.0 error response with a null id, used for
// failures that happen before a request reaches the bridge.
type rpcErrorBody struct {
	JSONRPC string        `json:"jsonrpc"`
	Error   rpcErrorField `json:"error"`
	ID      *string       `json:"id"`
}

type rpcErrorField struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// tokenGuard authenticates API requests against the daemon's bearer token.
// An empty secret rejects every request.
type tokenGuard struct {
	secret   string
	log      logger.Logger
	rejected atomic.Uint64
}

func newTokenGuard(secret string, l logger.Logger) *tokenGuard {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &tokenGuard{secret: secret, log: l}
}

// wrap answers unauthenticated requests with 401 and a JSON-RPC error body,
// so clients decode it the same way as a method error.
func (g *tokenGuard) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validToken(g.secret, r.Header.Get("Authorization")) {
			g.rejected.Add(1)
			g.log.Warning("web: rejected unauthenticated %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
			writeRPCError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Rejected returns the number of requests turned away.
func (g *tokenGuard) Rejected() uint64 { return g.rejected.Load() }

func requireToken(secret string, next http.Handler) http.Handler {
	return newTokenGuard(secret, nil).wrap(next)
}

func writeRPCError(w http.ResponseWriter, status int, code jrpc2.Code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rpcErrorBody{
		JSONRPC: "2.0",
		Error:   rpcErrorField{Code: int(code), Message: msg},
	})
}

// validToken reports whether authHeader is "Bearer <secret>", comparing in
// constant time.
func validToken(secret, authHeader string) bool {
	if secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
