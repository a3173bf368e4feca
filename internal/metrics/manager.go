package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterSetsCompleted  prometheus.Counter
	CounterSetsAdded      prometheus.Counter
	CounterRestsSkipped   prometheus.Counter
	CounterRestsExpired   prometheus.Counter
	CounterSessionsEnded  *prometheus.CounterVec
	CounterActionFailures *prometheus.CounterVec
	CounterStoreErrors    prometheus.Counter

	// gauges
	GaugeElapsedSeconds prometheus.Gauge
	GaugeRestRemaining  prometheus.Gauge
}

func NewTestManager() *Manager {
	return NewManager("repsession", "test", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterSetsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_completed_total",
			Help:      "The total number of sets marked done",
		}),
		CounterSetsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_added_total",
			Help:      "The total number of extra sets appended",
		}),
		CounterRestsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rests_skipped_total",
			Help:      "Rest countdowns ended by the user",
		}),
		CounterRestsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rests_expired_total",
			Help:      "Rest countdowns that ran to zero",
		}),
		CounterSessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_ended_total",
			Help:      "Sessions reported to the backend, by outcome",
		}, []string{"outcome"}),
		CounterActionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "action_failures_total",
			Help:      "Backend calls for session actions that failed",
		}, []string{"action"}),
		CounterStoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "progress_write_errors_total",
			Help:      "Failed writes to the local progress store",
		}),
		GaugeElapsedSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "elapsed_seconds",
			Help:      "Elapsed time of the current session",
		}),
		GaugeRestRemaining: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rest_remaining_seconds",
			Help:      "Seconds left in the current rest countdown",
		}),
	}
}
