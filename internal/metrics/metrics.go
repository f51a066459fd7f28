// Package metrics keeps process counters for searches and the statistics
// backends. The registry is private to the process and is exported as a
// node-exporter textfile on shutdown when configured.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	searches     *prometheus.CounterVec
	rowsShown    prometheus.Counter
	statsWrites  *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	reconnects   *prometheus.CounterVec
	docAvailable prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmfinder_searches_total",
				Help: "Completed search interactions by search kind.",
			},
			[]string{"kind"},
		),
		rowsShown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filmfinder_search_rows_shown_total",
			Help: "Result rows displayed across all pages.",
		}),
		statsWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmfinder_stats_writes_total",
				Help: "Query events written, by backend.",
			},
			[]string{"backend"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmfinder_stats_fallbacks_total",
				Help: "Statistics operations served by the file journal after a document store failure.",
			},
			[]string{"reason"},
		),
		reconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filmfinder_store_reconnects_total",
				Help: "Cached connection handles replaced after a failed liveness check.",
			},
			[]string{"store"},
		),
		docAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "filmfinder_document_store_available",
			Help: "Last availability verdict for the document store (1 available, 0 not).",
		}),
	}
	m.registry.MustRegister(m.searches, m.rowsShown, m.statsWrites, m.fallbacks, m.reconnects, m.docAvailable)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) SearchCompleted(kind string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind).Inc()
}

func (m *Metrics) RowsShown(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsShown.Add(float64(n))
}

func (m *Metrics) StatsWritten(backend string) {
	if m == nil {
		return
	}
	m.statsWrites.WithLabelValues(backend).Inc()
}

func (m *Metrics) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) Reconnected(store string) {
	if m == nil {
		return
	}
	m.reconnects.WithLabelValues(store).Inc()
}

func (m *Metrics) DocumentStoreAvailable(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.docAvailable.Set(1)
		return
	}
	m.docAvailable.Set(0)
}

// WriteTextfile writes the current values in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
