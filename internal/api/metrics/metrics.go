// Package metrics defines and registers all custom Prometheus metrics
// for the admin console API. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics are registered with the default registry via promauto at
// package init; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - kind: "admin" or "technician"
//   - result: "success", "rejected", "wrong_role", "in_flight", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of console login attempts, by principal kind and result.",
	},
	[]string{"kind", "result"},
)

// SessionsRestoredTotal counts bootstrap outcomes at startup.
// Labels:
//   - kind: "admin" or "technician"
//   - outcome: "restored" or "anonymous"
var SessionsRestoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_restored_total",
		Help:      "Total number of session bootstrap passes, by outcome.",
	},
	[]string{"kind", "outcome"},
)

// ── Backend gateway metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the platform backend.
// Labels:
//   - op: logical operation ("login", "orders", "resource", ...)
//   - status: HTTP status code, or "error" for transport failures
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests issued to the platform backend.",
	},
	[]string{"op", "status"},
)

// BackendRequestDuration measures backend round-trip time per operation.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of platform backend requests.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op"},
)

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportBuildDuration measures fetch-plus-fold time per derived report.
// Label:
//   - report: "dashboard", "customers", "monthly_revenue", "order_search"
var ReportBuildDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_build_duration_seconds",
		Help:      "Time to fetch raw collections and fold them into a report.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"report"},
)
