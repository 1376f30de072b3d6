package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casiopea_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// GateDecisions counts authorization gate outcomes per module (authorized|denied|error).
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casiopea_gate_decisions_total",
			Help: "Total number of authorization gate decisions",
		},
		[]string{"module", "level", "result"},
	)

	// CascadeRows counts permission rows touched by module deactivate/reactivate cascades.
	CascadeRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casiopea_module_cascade_rows_total",
			Help: "Permission rows updated by module lifecycle cascades",
		},
		[]string{"operation"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casiopea_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
