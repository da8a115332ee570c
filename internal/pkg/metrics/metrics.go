// Package metrics defines and registers all custom Prometheus metrics for the
// GalaCash gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init
// (promauto); the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "galacash"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the GalaCash REST backend.
// Labels:
//   - method: HTTP method
//   - code:   response status code, or "network_error" when none was received
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the backend API.",
	},
	[]string{"method", "code"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// TokenRefreshTotal counts refresh calls issued to the backend.
// Label:
//   - result: "success" or "failure"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access-token refresh calls.",
	},
	[]string{"result"},
)

// TokenRefreshWaiters counts requests that queued behind an in-flight refresh
// instead of issuing their own.
var TokenRefreshWaiters = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_waiters_total",
		Help:      "Total number of requests queued behind an in-flight refresh.",
	},
)

// ── Query cache metrics ───────────────────────────────────────────────────────

// QueryLookupsTotal counts cache lookups.
// Labels:
//   - resource: the key namespace (e.g. "transactions")
//   - result:   "hit", "stale" or "miss"
var QueryLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_lookups_total",
		Help:      "Total number of query cache lookups by result.",
	},
	[]string{"resource", "result"},
)

// QueryRetriesTotal counts query fetch retries.
var QueryRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_retries_total",
		Help:      "Total number of retried query fetches.",
	},
	[]string{"resource"},
)

// InvalidationsTotal counts namespace invalidations caused by mutations.
// Labels:
//   - mutation:  the mutation name (e.g. "approve_fund_application")
//   - resource:  the invalidated namespace
var InvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_invalidations_total",
		Help:      "Total number of cache namespace invalidations.",
	},
	[]string{"mutation", "resource"},
)

// MutationsTotal counts mutations by outcome.
// Labels:
//   - mutation: the mutation name
//   - result:   "success" or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of mutations executed.",
	},
	[]string{"mutation", "result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// ActiveSessions tracks the number of signed-in sessions held by this replica.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of active gateway sessions.",
	},
)

// NotifyQueueDepth tracks pending invalidation events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of invalidation events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
