// Package metrics defines the Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session lifecycle metrics
var (
	// ActiveSessions tracks the number of live retro sessions in the registry
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retro_active_sessions",
			Help: "Number of live retro sessions",
		},
	)

	// SessionsStarted tracks sessions started since process start
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retro_sessions_started_total",
			Help: "Total retro sessions started",
		},
	)

	// SessionsEnded tracks session endings by outcome (summarized/terminated)
	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_sessions_ended_total",
			Help: "Total retro sessions ended by outcome",
		},
		[]string{"outcome"},
	)
)

// Feedback metrics
var (
	// FeedbackReceived tracks DM feedback by operation and result
	FeedbackReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retro_feedback_events_total",
			Help: "Total feedback events by operation (submit/edit/delete) and result",
		},
		[]string{"operation", "result"},
	)
)

// External call metrics
var (
	// NotifyFailures tracks per-recipient notification failures
	NotifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retro_notify_failures_total",
			Help: "Total failed notifications (isolated per recipient)",
		},
	)

	// VoteFetchFailures tracks reaction-count lookups degraded to zero votes
	VoteFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retro_vote_fetch_failures_total",
			Help: "Total reaction-count fetches that failed and were treated as zero votes",
		},
	)

	// RosterLookupFailures tracks membership/presence lookups that failed
	RosterLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retro_roster_lookup_failures_total",
			Help: "Total roster membership or presence lookups that failed",
		},
	)
)

// Slack API circuit breaker metrics
var (
	// CircuitBreakerStateChanges tracks breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
