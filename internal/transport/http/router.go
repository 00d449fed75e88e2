// Package httptransport assembles the public HTTP surface: the account
// endpoints, health, and metrics.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"account-gateway/internal/account/handler"
	"account-gateway/internal/account/store"
)

// NewRouter wires the router. Cross-origin requests are accepted from any
// origin; mobile webviews and local development builds call this API from
// arbitrary origins.
func NewRouter(accounts *handler.Handler, pinger store.Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/healthz", handleHealth(pinger))
	r.Handle("/metrics", promhttp.Handler())

	accounts.Register(r)

	return r
}

func handleHealth(pinger store.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
