package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Per-destination outcome of one dispatch attempt.
	DispatchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_results_total",
		Help: "Dispatch attempts per destination and outcome",
	}, []string{"destination", "outcome"})

	// Latency of one destination send.
	DispatchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_latency_seconds",
		Help:    "Latency of destination sends",
		Buckets: prometheus.DefBuckets,
	}, []string{"destination"})

	// Domain events produced by the capture layer, by event type.
	CapturedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "captured_events_total",
		Help: "Domain events emitted by the capture layer",
	}, []string{"event_type"})

	// Behavioral event rows that failed to persist. Logging failures are
	// swallowed, so this counter is the only place they surface.
	EventLogFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "behavioral_event_log_failures_total",
		Help: "Behavioral event inserts that failed",
	})

	// Bundle offers created by the suggestion engine.
	OffersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bundle_offers_created_total",
		Help: "Bundle offers created",
	})
)

func Init() {
	prometheus.MustRegister(
		DispatchResults,
		DispatchLatency,
		CapturedEvents,
		EventLogFailures,
		OffersCreated,
	)
}
