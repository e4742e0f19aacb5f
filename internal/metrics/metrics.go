package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event ingestion metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logrelay_events_total",
			Help: "Total number of events received, by response status",
		},
		[]string{"status"},
	)

	EventBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logrelay_event_bytes_total",
			Help: "Total bytes of event data received",
		},
	)

	SignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logrelay_signature_failures_total",
			Help: "Total number of rejected payload signatures",
		},
	)

	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logrelay_validation_errors_total",
			Help: "Total number of payload validation failures, by kind",
		},
		[]string{"kind"},
	)

	// Token broker metrics
	TokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logrelay_token_refreshes_total",
			Help: "Total number of successful bearer token exchanges",
		},
	)

	TokenExchangeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logrelay_token_exchange_errors_total",
			Help: "Total number of failed bearer token exchanges",
		},
	)

	// Sink metrics
	InsertDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logrelay_insert_duration_seconds",
			Help:    "Duration of warehouse insert calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	InsertErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logrelay_insert_errors_total",
			Help: "Total number of rejected warehouse inserts",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logrelay_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"client"},
	)
)
