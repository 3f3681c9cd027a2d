// Package metrics holds the Prometheus instruments of the projection engine
// and the event source fan-out.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks excluded events, failing endpoints, fetch latency and
// completed projections. A nil *Metrics is valid and records nothing.
type Metrics struct {
	EventsExcluded *prometheus.CounterVec
	SourceFailures *prometheus.CounterVec
	Projections    *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
}

// New registers every instrument on reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsExcluded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gitnostr_events_excluded_total",
			Help: "Events left out of a projection, by reason",
		}, []string{"reason"}),
		SourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gitnostr_source_failures_total",
			Help: "Failed fetches, by endpoint",
		}, []string{"endpoint"}),
		Projections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gitnostr_projections_total",
			Help: "Completed projections, by entity",
		}, []string{"entity"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitnostr_fetch_duration_seconds",
			Help:    "Duration of fan-out fetches across all endpoints",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementExcluded records one event excluded for reason.
func (m *Metrics) IncrementExcluded(reason string) {
	if m == nil {
		return
	}
	m.EventsExcluded.WithLabelValues(reason).Inc()
}

// IncrementSourceFailure records one failed fetch against endpoint.
func (m *Metrics) IncrementSourceFailure(endpoint string) {
	if m == nil {
		return
	}
	m.SourceFailures.WithLabelValues(endpoint).Inc()
}

// IncrementProjection records one completed projection of entity.
func (m *Metrics) IncrementProjection(entity string) {
	if m == nil {
		return
	}
	m.Projections.WithLabelValues(entity).Inc()
}

// ObserveFetch records the duration of a fetch.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFetch(start time.Time) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(time.Since(start).Seconds())
}
