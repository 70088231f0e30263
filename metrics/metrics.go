// Package metrics defines the Prometheus instrumentation for the attestation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is a
// valid no-op receiver for every helper, so instrumentation stays optional.
type Metrics struct {
	VerificationsTotal   *prometheus.CounterVec
	VerificationDuration prometheus.Histogram

	IndexerQueryDuration *prometheus.HistogramVec
	IndexerErrorsTotal   *prometheus.CounterVec

	RegistryCallsTotal *prometheus.CounterVec

	ArchiveWritesTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attestor_verifications_total",
			Help: "Total number of verification runs, labeled by outcome",
		}, []string{"outcome"}),
		VerificationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "attestor_verification_duration_seconds",
			Help:    "Duration of full verification pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		IndexerQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attestor_indexer_query_duration_seconds",
			Help:    "Duration of indexer queries in seconds, labeled by collection",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection"}),
		IndexerErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attestor_indexer_errors_total",
			Help: "Total number of failed indexer queries, labeled by kind",
		}, []string{"kind"}),
		RegistryCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attestor_registry_calls_total",
			Help: "Total number of on-chain registry calls, labeled by operation and outcome",
		}, []string{"op", "outcome"}),
		ArchiveWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attestor_archive_writes_total",
			Help: "Total number of archive store operations, labeled by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveVerification records one verification run.
func (m *Metrics) ObserveVerification(valid bool, durationSeconds float64) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
	m.VerificationDuration.Observe(durationSeconds)
}

// ObserveIndexerQuery records the latency of one indexer query.
func (m *Metrics) ObserveIndexerQuery(collection string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.IndexerQueryDuration.WithLabelValues(collection).Observe(durationSeconds)
}

// IncrementIndexerErrors increments the indexer error counter for an error kind.
func (m *Metrics) IncrementIndexerErrors(kind string) {
	if m == nil {
		return
	}
	m.IndexerErrorsTotal.WithLabelValues(kind).Inc()
}

// IncrementRegistryCalls increments the registry call counter.
func (m *Metrics) IncrementRegistryCalls(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RegistryCallsTotal.WithLabelValues(op, outcome).Inc()
}

// IncrementArchiveWrites increments the archive write counter.
func (m *Metrics) IncrementArchiveWrites(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ArchiveWritesTotal.WithLabelValues(outcome).Inc()
}
