// Package metrics exposes run counters on a dedicated Prometheus registry.
//
// A scraping run is a batch job, so nothing is served over HTTP: the registry
// is dumped once at the end of the run to a node-exporter textfile.
// All methods are safe on a nil *Metrics, which lets components run without
// instrumentation in tests.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "fresque"

// Metrics holds the counters recorded during one run
type Metrics struct {
	registry *prometheus.Registry

	recordsEmitted    *prometheus.CounterVec
	rejections        *prometheus.CounterVec
	pagesFetched      *prometheus.CounterVec
	geocoderQueries   prometheus.Counter
	geocoderCacheHits prometheus.Counter
}

// New creates and registers the run counters
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Canonical records emitted, by workshop type.",
		}, []string{"workshop"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Candidate events rejected, by rejection kind.",
		}, []string{"kind"}),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Source pages fetched, by site family.",
		}, []string{"family"}),
		geocoderQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoder_queries_total",
			Help:      "Queries sent to the geocoding backend.",
		}),
		geocoderCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocoder_cache_hits_total",
			Help:      "Geocoding lookups answered from the run cache.",
		}),
	}

	m.registry.MustRegister(
		m.recordsEmitted,
		m.rejections,
		m.pagesFetched,
		m.geocoderQueries,
		m.geocoderCacheHits,
	)
	return m
}

// RecordEmitted counts one emitted record
func (m *Metrics) RecordEmitted(workshop string) {
	if m == nil {
		return
	}
	m.recordsEmitted.WithLabelValues(workshop).Inc()
}

// Rejected counts one rejected candidate
func (m *Metrics) Rejected(kind string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(kind).Inc()
}

// PageFetched counts one fetched page
func (m *Metrics) PageFetched(family string) {
	if m == nil {
		return
	}
	m.pagesFetched.WithLabelValues(family).Inc()
}

// GeocoderLookup counts a geocoding lookup, split by cache outcome
func (m *Metrics) GeocoderLookup(cached bool) {
	if m == nil {
		return
	}
	if cached {
		m.geocoderCacheHits.Inc()
		return
	}
	m.geocoderQueries.Inc()
}

// WriteTextfile writes every metric in the text exposition format to path
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Emitted returns how many records were emitted for workshop
func (m *Metrics) Emitted(workshop string) float64 {
	if m == nil {
		return 0
	}
	return value(m.recordsEmitted.WithLabelValues(workshop))
}

// Rejections returns how many candidates were rejected with kind
func (m *Metrics) Rejections(kind string) float64 {
	if m == nil {
		return 0
	}
	return value(m.rejections.WithLabelValues(kind))
}

// Pages returns how many pages of family were fetched
func (m *Metrics) Pages(family string) float64 {
	if m == nil {
		return 0
	}
	return value(m.pagesFetched.WithLabelValues(family))
}

func value(c prometheus.Counter) float64 {
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}
