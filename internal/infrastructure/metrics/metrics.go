// Package metrics exposes the Prometheus collectors of the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync run metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jirasync_sync_runs_total",
			Help: "Total number of finished sync runs",
		},
		[]string{"sync_type", "status"},
	)

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jirasync_sync_run_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"sync_type"},
	)

	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jirasync_sync_records_total",
			Help: "Tickets handled by sync runs by outcome",
		},
		[]string{"sync_type", "outcome"}, // "created", "updated", "failed", "resolved"
	)

	// Remote tracker metrics
	JiraRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jirasync_jira_requests_total",
			Help: "Total number of remote tracker requests",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "timeout", "unavailable", "rejected", "not_found"
	)

	JiraRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jirasync_jira_request_duration_seconds",
			Help:    "Duration of remote tracker requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jirasync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordSyncRun records a finished run and its per-outcome record counts.
func RecordSyncRun(syncType, status string, duration time.Duration, created, updated, failed, resolved int) {
	SyncRunsTotal.WithLabelValues(syncType, status).Inc()
	SyncRunDuration.WithLabelValues(syncType).Observe(duration.Seconds())

	for outcome, n := range map[string]int{
		"created":  created,
		"updated":  updated,
		"failed":   failed,
		"resolved": resolved,
	} {
		if n > 0 {
			SyncRecordsTotal.WithLabelValues(syncType, outcome).Add(float64(n))
		}
	}
}

// RecordJiraRequest records one remote call.
func RecordJiraRequest(operation, outcome string, duration time.Duration) {
	JiraRequestsTotal.WithLabelValues(operation, outcome).Inc()
	JiraRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
