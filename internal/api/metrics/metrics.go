// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersCreatedTotal counts newly registered accounts.
// Label:
//   - role: "admin" or "retailer"
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - role: "admin" or "retailer"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// AccessDeniedTotal counts requests rejected by the auth middleware.
// Label:
//   - reason: "missing_token", "invalid_token" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)

// ── Catalogue and order metrics ───────────────────────────────────────────────

// ProductsCreatedTotal counts newly listed products.
// Label:
//   - category: one of the product categories
var ProductsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created, by category.",
	},
	[]string{"category"},
)

// OrdersCreatedTotal counts successful order submissions, replays included.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of successful order submissions.",
	},
)

// DeletionsTotal counts deletions.
// Labels:
//   - entity: "admin", "retailer", "product" or "order"
//   - mode: "soft" or "permanent"
var DeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletions_total",
		Help:      "Total number of deletions, by entity and mode.",
	},
	[]string{"entity", "mode"},
)

// UploadsTotal counts image uploads.
// Labels:
//   - kind: "admins", "retailers" or "products"
//   - result: "stored", "rejected" or "discarded"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of image uploads, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailSentTotal counts confirmation emails by outcome.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of order confirmation emails, by result.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the number of emails waiting to be sent.
var MailQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in the mail dispatcher.",
	},
)

// MailSendDuration measures a single SMTP delivery.
var MailSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of SMTP delivery of one email.",
		Buckets:   prometheus.DefBuckets,
	},
)
