// Package metrics defines and registers all custom Prometheus metrics for
// the delivery platform's identity core. It is the single source of truth
// for metric names, labels, and help strings.
//
// Metrics use promauto and register with the default registry at package
// load; the HTTP servers expose them via /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "delivery"

// ── Authentication metrics ────────────────────────────────────────────────────

// SigninsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "not_verified", "disabled", "deleted"
var SigninsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts account creations.
// Label:
//   - kind: "self" or "admin"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by registration kind.",
	},
	[]string{"kind"},
)

// TokensIssuedTotal counts lifecycle tokens issued.
// Label:
//   - kind: "confirmation" or "password_reset"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_tokens_issued_total",
		Help:      "Total number of lifecycle tokens issued, by kind.",
	},
	[]string{"kind"},
)

// TokenChecksTotal counts lifecycle token validations and consumptions.
// Labels:
//   - kind:   "confirmation" or "password_reset"
//   - result: "ok", "invalid", "expired"
var TokenChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_token_checks_total",
		Help:      "Total number of lifecycle token checks, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ── Event publisher metrics ───────────────────────────────────────────────────

// EventsPublishedTotal counts events delivered to the message bus.
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of notification events published, by topic.",
	},
	[]string{"topic"},
)

// EventsDroppedTotal counts events lost to serialization, buffer overflow,
// or broker failure. Delivery is best-effort; drops never fail requests.
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of notification events dropped, by topic.",
	},
	[]string{"topic"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts routed requests.
// Labels:
//   - backend: logical backend name (e.g. "user-service")
//   - outcome: "forwarded", "unauthorized", "rejected", "failed"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of gateway requests, by backend and outcome.",
	},
	[]string{"backend", "outcome"},
)

// BreakerTransitionsTotal counts circuit breaker state transitions.
// Labels:
//   - backend: logical backend name
//   - state:   state entered ("open", "half_open", "closed")
var BreakerTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "breaker_transitions_total",
		Help:      "Total number of circuit breaker state transitions, by backend and entered state.",
	},
	[]string{"backend", "state"},
)

// BreakerState reports the current breaker state per backend:
// 0 = closed, 1 = half-open, 2 = open.
var BreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "breaker_state",
		Help:      "Current circuit breaker state per backend (0 closed, 1 half-open, 2 open).",
	},
	[]string{"backend"},
)
