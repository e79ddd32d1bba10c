// Package metrics exposes prometheus collectors for the detection and
// correlation engines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socforge_events_evaluated_total",
			Help: "Total number of events evaluated by the detection engine",
		},
	)

	AlertsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socforge_alerts_generated_total",
			Help: "Total number of alerts generated",
		},
		[]string{"severity"},
	)

	RuleEvaluationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socforge_rule_evaluation_failures_total",
			Help: "Total number of per-item rule evaluation failures reported as diagnostics",
		},
	)

	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socforge_detection_duration_seconds",
			Help:    "Time taken to evaluate one event batch against the rule set",
			Buckets: prometheus.DefBuckets,
		},
	)

	IncidentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socforge_incidents_created_total",
			Help: "Total number of incidents created by the correlation engine",
		},
	)

	IncidentsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socforge_incidents_updated_total",
			Help: "Total number of incident merge updates",
		},
	)

	CorrelationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socforge_correlation_duration_seconds",
			Help:    "Time taken to correlate one alert batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	SimulationEventsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socforge_simulation_events_generated_total",
			Help: "Total number of synthetic events generated per scenario",
		},
		[]string{"scenario"},
	)
)
