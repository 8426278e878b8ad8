// Package metrics holds the Prometheus collectors shared by the engines, the scheduler and
// the HTTP layer. Collectors register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncpay_transactions_total",
			Help: "Transactions committed by the engine, by operation kind and resulting status.",
		},
		[]string{"kind", "status"},
	)

	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncpay_rejections_total",
			Help: "Transfers rejected by the engine, by reason.",
		},
		[]string{"reason"},
	)

	SinkFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncpay_sink_failures_total",
			Help: "Best-effort deliveries to the audit, regulatory or event sinks that failed.",
		},
		[]string{"sink"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asyncpay_sweep_duration_seconds",
			Help:    "Duration of reconciliation sweeps.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	SweepItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncpay_sweep_items_total",
			Help: "Items handled by reconciliation sweeps, by job and outcome.",
		},
		[]string{"job", "outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asyncpay_http_requests_total",
			Help: "HTTP requests served, by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asyncpay_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Sink labels.
const (
	SinkAudit      = "audit"
	SinkRegulatory = "regulatory"
	SinkEvents     = "events"
)

// ObserveSweep records the per-outcome counters of a finished sweep.
func ObserveSweep(job string, succeeded, blocked, skipped, failed int) {
	SweepItemsTotal.WithLabelValues(job, "succeeded").Add(float64(succeeded))
	SweepItemsTotal.WithLabelValues(job, "blocked").Add(float64(blocked))
	SweepItemsTotal.WithLabelValues(job, "skipped").Add(float64(skipped))
	SweepItemsTotal.WithLabelValues(job, "failed").Add(float64(failed))
}
