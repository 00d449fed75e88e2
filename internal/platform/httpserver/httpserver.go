package httpserver

import (
	"net/http"
	"time"
)

// New builds the gateway's HTTP server. Header and idle timeouts are fixed
// here; per-request deadlines come from the middleware chain, not the
// server.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
