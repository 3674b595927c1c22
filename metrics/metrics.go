// Package metrics provides Prometheus observability metrics for the chat router.
// It includes Critical and Important metrics for business and operational visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// SessionsLive tracks chats currently counted against team capacity.
var SessionsLive = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "router",
	Name:      "sessions_live",
	Help:      "Number of live chat sessions per lane",
}, []string{"lane"})

// SessionsWaiting tracks chats queued for a free slot, tombstones included.
var SessionsWaiting = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "router",
	Name:      "sessions_waiting",
	Help:      "Number of waiting chat sessions per lane",
}, []string{"lane"})

// TeamCapacity tracks the live session limit of each lane.
var TeamCapacity = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "router",
	Name:      "team_capacity",
	Help:      "Concurrent chat capacity of the assignable agents per lane",
}, []string{"lane"})

// Agents tracks roster size per lane, draining agents included.
var Agents = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "router",
	Name:      "agents",
	Help:      "Number of agents on each lane's roster",
}, []string{"lane"})

// SessionsStartedTotal counts admitted chats by lane and initial state.
var SessionsStartedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "sessions_started_total",
	Help:      "Chat sessions admitted, by lane and initial state",
}, []string{"lane", "state"})

// SessionsRefusedTotal counts chats turned away by every lane.
// Sustained growth means the desk is understaffed.
var SessionsRefusedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "sessions_refused_total",
	Help:      "Chat requests refused because every eligible lane was full",
})

// SessionsClosedTotal counts chats leaving a lane, by reason.
var SessionsClosedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "sessions_closed_total",
	Help:      "Chat sessions closed, by lane and reason",
}, []string{"lane", "reason"})

// AssignmentsTotal counts sessions handed to an agent.
var AssignmentsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "assignments_total",
	Help:      "Chat sessions assigned to an agent, by lane",
}, []string{"lane"})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ShiftChangesTotal counts primary team rotations.
var ShiftChangesTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "shift_changes_total",
	Help:      "Number of shift rotations applied to the primary lane",
})

// AgentsDrainedTotal counts agents removed after finishing their last chat.
var AgentsDrainedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "router",
	Name:      "agents_drained_total",
	Help:      "Agents removed from a roster after draining",
})

// TickFailuresTotal counts maintenance ticks that panicked.
var TickFailuresTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "maintenance",
	Name:      "tick_failures_total",
	Help:      "Maintenance ticks that failed, by task",
}, []string{"task"})

// TickDurationSeconds tracks time spent in each maintenance task.
var TickDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "maintenance",
	Name:      "tick_duration_seconds",
	Help:      "Time taken by a maintenance tick, by task",
	Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
}, []string{"task"})

// RosterAgentsLoaded tracks agents read from the roster file at startup.
var RosterAgentsLoaded = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "parser",
	Name:      "roster_agents_loaded",
	Help:      "Number of agents loaded from the roster file",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ObserveLane publishes the current size of one lane.
func ObserveLane(lane string, live, waiting, capacity, agents int) {
	SessionsLive.WithLabelValues(lane).Set(float64(live))
	SessionsWaiting.WithLabelValues(lane).Set(float64(waiting))
	TeamCapacity.WithLabelValues(lane).Set(float64(capacity))
	Agents.WithLabelValues(lane).Set(float64(agents))
}

// ResetLaneGauges clears per-lane gauges. A new router calls it before staffing its lanes.
func ResetLaneGauges() {
	SessionsLive.Reset()
	SessionsWaiting.Reset()
	TeamCapacity.Reset()
	Agents.Reset()
}
