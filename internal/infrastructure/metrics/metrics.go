// Package metrics defines and registers the custom Prometheus metrics of the
// user service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default registry at package init through
// promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheRequestsTotal counts user cache lookups.
// Label:
//   - result: "hit", "miss", or "error" (transport failure, served as a miss)
var CacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of user cache lookups, labelled by result (hit/miss/error).",
	},
	[]string{"result"},
)

// CacheWriteErrorsTotal counts failed cache writes and evictions.
// Label:
//   - op: "add", "set" or "delete"
var CacheWriteErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_write_errors_total",
		Help:      "Total number of user cache writes or evictions that failed.",
	},
	[]string{"op"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UsersCreatedTotal counts successfully created users.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of users created.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)
