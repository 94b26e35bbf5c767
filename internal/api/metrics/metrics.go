// Package metrics defines and registers all custom Prometheus metrics for the
// admin console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ── Navigation ────────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts navigation guard decisions.
// Labels:
//   - reason: the guard reason (e.g. "permitted", "denied", "login_required")
//   - allowed: "true" or "false"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of navigation guard decisions, by reason.",
	},
	[]string{"reason", "allowed"},
)

// ── Session ───────────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionInvalidationsTotal counts sessions torn down because the upstream
// answered 401 or 403.
var SessionInvalidationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_invalidations_total",
		Help:      "Total number of sessions cleared after an upstream 401/403.",
	},
)

// ── Upstream API ──────────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls to the upstream REST API.
// Labels:
//   - method: HTTP method
//   - status: response status code, or "error" when no response arrived
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream API requests, by method and status.",
	},
	[]string{"method", "status"},
)

// UpstreamRequestDuration measures upstream round trips.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Audit ─────────────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts audit events that could not be persisted or queued.
// Label:
//   - reason: "write_failed" or "queue_full"
var AuditErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of audit events that were dropped or failed to persist.",
	},
	[]string{"reason"},
)
