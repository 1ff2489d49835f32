// Package telemetry Prometheus metrics for the tracker, registered on the default registry
// and served at GET /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	// RegistrationsTotal door label is the raw door string; doors are admin-defined so cardinality stays small.
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Name registrations accepted, by door.",
		},
		[]string{"door"},
	)

	ArchivesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "archives_created_total",
			Help: "Archives created from the active set.",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Spreadsheet exports by scope (active, archive).",
		},
		[]string{"scope"},
	)
)

var (
	BroadcastSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_subscribers",
			Help: "Live channel subscribers currently connected.",
		},
	)

	BroadcastDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dropped_total",
			Help: "Events dropped because a subscriber buffer was full.",
		},
	)

	BroadcastQueueDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_queue_dropped_total",
			Help: "Events dropped because an external sink queue was full, by queue.",
		},
		[]string{"queue"},
	)

	BroadcastSinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_sink_errors_total",
			Help: "Failed deliveries to external broadcast sinks, by sink.",
		},
		[]string{"sink"},
	)
)
