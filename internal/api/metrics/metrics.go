// Package metrics defines and registers all custom Prometheus metrics for
// the console gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at init via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "console"

// ChatTurnsTotal counts completed conversation turns.
// Labels:
//   - provider: cloud provider that served the turn (e.g. "aws")
//   - status: "success" or "error"
var ChatTurnsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_turns_total",
		Help:      "Total number of chat turns, by provider and outcome.",
	},
	[]string{"provider", "status"},
)

// ChatTurnDuration measures one turn end to end, transport call included.
// Label:
//   - provider: cloud provider that served the turn
var ChatTurnDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_turn_duration_seconds",
		Help:      "Duration of a chat turn from request to thread upsert.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"provider"},
)

// SessionExpiriesTotal counts session-expired broadcasts. The auth state
// machine latches per expiry event, so this counts expiries, not 401s.
var SessionExpiriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expiries_total",
		Help:      "Total number of session-expired broadcasts.",
	},
)

// ProviderSwitchesTotal counts provider.changed broadcasts.
// Label:
//   - provider: the provider switched to
var ProviderSwitchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_switches_total",
		Help:      "Total number of provider preference changes, by new provider.",
	},
	[]string{"provider"},
)

// NewChatsTotal counts fresh sessions minted by the new-chat broadcast.
var NewChatsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "new_chats_total",
		Help:      "Total number of fresh chat sessions started.",
	},
)
