package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltbridge_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// HostRequestDecisions counts host registration outcomes (submitted|approved|denied).
	HostRequestDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltbridge_host_request_decisions_total",
			Help: "Total number of host registration request transitions",
		},
		[]string{"decision"},
	)

	// PendingHostRequests tracks host requests currently awaiting review.
	PendingHostRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voltbridge_pending_host_requests",
			Help: "Number of host registration requests in the pending state",
		},
	)

	// BookingOutcomes counts booking lifecycle events (created|cancelled|completed|conflict).
	BookingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voltbridge_booking_outcomes_total",
			Help: "Total number of booking lifecycle events",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voltbridge_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
