package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_ticks_processed_total",
		Help: "Total number of engine evaluation passes.",
	})

	BehaviorsFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "story_behaviors_fired_total",
		Help: "Total number of behaviors whose conditions held, labelled by trigger.",
	}, []string{"trigger"})

	EventTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "story_event_transitions_total",
		Help: "Total number of event lifecycle transitions, labelled by target status.",
	}, []string{"status"})

	EventsDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_events_deferred_total",
		Help: "Total number of cascaded events deferred past the cascade depth cap.",
	})

	ActionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_action_failures_total",
		Help: "Total number of isolated action failures recorded during execution.",
	})

	PropagationReach = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "story_propagation_reach_nodes",
		Help:    "Nodes activated per propagation call.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	SnapshotsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_snapshots_captured_total",
		Help: "Total number of snapshots captured.",
	})
)
