// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Stream metrics
	TicksParsed   prometheus.Counter
	ParseErrors   prometheus.Counter
	Reconnects    prometheus.Counter
	StreamedBytes prometheus.Counter

	// Store metrics
	TicksStored      prometheus.Counter
	LogWriteFailures prometheus.Counter
	BufferSize       *prometheus.GaugeVec

	// Analytics metrics
	AnalyticsPasses   *prometheus.CounterVec
	AnalyticsDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "statarb_lab"
	}

	return &Metrics{
		TicksParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "ticks_parsed_total",
			Help:      "Total number of stream messages parsed into ticks",
		}),
		ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "parse_errors_total",
			Help:      "Total number of malformed stream messages discarded",
		}),
		Reconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "reconnects_total",
			Help:      "Total number of reconnect attempts",
		}),
		StreamedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Total bytes read from the market data stream",
		}),

		TicksStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "ticks_stored_total",
			Help:      "Total number of ticks appended to ring buffers",
		}),
		LogWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "log_write_failures_total",
			Help:      "Total number of failed durable log writes",
		}),
		BufferSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "buffer_size",
			Help:      "Current number of ticks in the ring buffer per symbol",
		}, []string{"symbol"}),

		AnalyticsPasses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "passes_total",
			Help:      "Total number of analytics passes by estimator method",
		}, []string{"method"}),
		AnalyticsDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "pass_duration_seconds",
			Help:      "Analytics pass duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
