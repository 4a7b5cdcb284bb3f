// Package metrics defines and registers all custom Prometheus metrics for the
// catalog API. It is the single source of truth for metric names, labels, and
// help strings.
//
// All collectors are registered with the default registry on package init via
// promauto and exposed on /metrics next to the echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Entity metrics ────────────────────────────────────────────────────────────

// EntitiesCreatedTotal counts successful creates.
// Label:
//   - kind: "book" or "film"
var EntitiesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entities_created_total",
		Help:      "Total number of catalog entities created, by kind.",
	},
	[]string{"kind"},
)

// EntitiesUpdatedTotal counts successful revision-guarded updates.
var EntitiesUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entities_updated_total",
		Help:      "Total number of catalog entities updated, by kind.",
	},
	[]string{"kind"},
)

// UpdateRejectionsTotal counts updates refused by the concurrency controller.
// Labels:
//   - kind: "book" or "film"
//   - reason: "version_missing", "version_malformed", "version_stale",
//     "invalid", "title_exists", "not_found"
var UpdateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "update_rejections_total",
		Help:      "Total number of rejected updates, by kind and reason.",
	},
	[]string{"kind", "reason"},
)

var EntitiesDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entities_deleted_total",
		Help:      "Total number of catalog entities removed, by kind.",
	},
	[]string{"kind"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

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

// AuthFailuresTotal counts requests rejected by the auth gate.
// Label:
//   - reason: "header_missing", "token_expired", "token_invalid", "forbidden"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Label:
//   - result: "sent", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of create notifications, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks mails waiting for a worker.
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications waiting in the dispatcher queue.",
	},
)

// NotificationDuration measures SMTP delivery time.
var NotificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single notification delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// RateLimitedTotal counts requests refused by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)
