package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh results recorded in TokenRefreshes
const (
	refreshSuccess = "success"
	refreshFailure = "failure"
	refreshMissing = "missing"
)

// Metrics holds the client's Prometheus collectors
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TokenRefreshes  *prometheus.CounterVec
	SignOuts        prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "carrental",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of API requests sent, including retries",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "carrental",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		TokenRefreshes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "carrental",
				Subsystem: "client",
				Name:      "token_refresh_total",
				Help:      "Token refresh attempts by result",
			},
			[]string{"result"},
		),
		SignOuts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "carrental",
				Subsystem: "client",
				Name:      "signouts_total",
				Help:      "Sessions cleared after an unrecoverable authentication failure",
			},
		),
	}
}
