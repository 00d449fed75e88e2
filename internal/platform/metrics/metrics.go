package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	AccountsErased  prometheus.Counter
	TokensCredited  prometheus.Counter
	AuthFailures    prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer. Tests pass a fresh
// registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_gateway_request_duration_seconds",
			Help:    "HTTP request latency by path and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "status"}),
		AccountsErased: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_accounts_erased_total",
			Help: "Total number of accounts pseudonymized and deleted",
		}),
		TokensCredited: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_tokens_credited_total",
			Help: "Total number of tokens credited across all users",
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_gateway_auth_failures_total",
			Help: "Total number of rejected bearer credentials",
		}),
	}
}
