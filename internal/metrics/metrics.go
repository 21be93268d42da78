package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	recomputations  *prometheus.CounterVec
	recomputeTime   prometheus.Histogram
	staleDiscarded  prometheus.Counter
	activeSessions  prometheus.Gauge
	datasetRecords  prometheus.Gauge
	selectionEvents *prometheus.CounterVec
}

// New registers all collectors plus the Go runtime collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recomputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchdash",
			Name:      "view_recomputations_total",
			Help:      "Derived views recomputed, by view.",
		}, []string{"view"}),
		recomputeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "launchdash",
			Name:      "recompute_duration_seconds",
			Help:      "Time to recompute both views for one selection change.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		staleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "launchdash",
			Name:      "stale_views_discarded_total",
			Help:      "Recomputed views dropped because a newer selection had already published.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchdash",
			Name:      "sessions_active",
			Help:      "Dashboard sessions currently held in memory.",
		}),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchdash",
			Name:      "dataset_records",
			Help:      "Launch records loaded at startup.",
		}),
		selectionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchdash",
			Name:      "selection_changes_total",
			Help:      "Selection changes received, by channel.",
		}, []string{"channel"}),
	}

	m.registry.MustRegister(
		m.recomputations,
		m.recomputeTime,
		m.staleDiscarded,
		m.activeSessions,
		m.datasetRecords,
		m.selectionEvents,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRecompute records one recomputation of both views
func (m *Metrics) ObserveRecompute(d time.Duration) {
	if m == nil {
		return
	}
	m.recomputations.WithLabelValues("pie").Inc()
	m.recomputations.WithLabelValues("scatter").Inc()
	m.recomputeTime.Observe(d.Seconds())
}

// StaleDiscarded counts a result that lost the last-wins race
func (m *Metrics) StaleDiscarded() {
	if m == nil {
		return
	}
	m.staleDiscarded.Inc()
}

// SelectionChanged counts an event on a named state-change channel
func (m *Metrics) SelectionChanged(channel string) {
	if m == nil {
		return
	}
	m.selectionEvents.WithLabelValues(channel).Inc()
}

// SetActiveSessions sets the session gauge
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// SetDatasetRecords sets the loaded record gauge
func (m *Metrics) SetDatasetRecords(n int) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
