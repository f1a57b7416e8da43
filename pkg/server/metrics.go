package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registration metrics
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helmwire_registrations_total",
			Help: "Total number of deployable and task registration attempts",
		},
		[]string{"kind", "status"}, // kind deployable or task, status registered or rejected
	)

	attachmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helmwire_attachments_total",
			Help: "Total number of dependency and label attachments",
		},
		[]string{"type"}, // dependencies or labels
	)

	// HTTP metrics
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helmwire_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helmwire_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
