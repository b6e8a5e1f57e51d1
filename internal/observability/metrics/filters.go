// Package metrics provides Prometheus collectors for the audio filter bundle
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FilterMetrics covers the catalog, factory, startup normalizer and settings panel.
type FilterMetrics struct {
	registry *prometheus.Registry

	instancesCreated  *prometheus.CounterVec
	unknownLookups    prometheus.Counter
	validatorResets   *prometheus.CounterVec
	validatorWrites   prometheus.Counter
	settingsWrites    *prometheus.CounterVec
	rebuildRequests   *prometheus.CounterVec
	settingsRejected  *prometheus.CounterVec
	equalizerDisabled prometheus.Counter

	collectors []prometheus.Collector
}

// NewFilterMetrics creates and registers the filter metrics
func NewFilterMetrics(registry *prometheus.Registry) (*FilterMetrics, error) {
	m := &FilterMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *FilterMetrics) initMetrics() {
	m.instancesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_instances_created_total",
			Help: "Filter and extension instances created by the factory",
		},
		[]string{"name", "kind"},
	)
	m.unknownLookups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiofilters_unknown_lookups_total",
			Help: "Factory lookups for names not in the catalog",
		},
	)
	m.validatorResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_validator_resets_total",
			Help: "Stored values replaced by their defaults at startup",
		},
		[]string{"key"},
	)
	m.validatorWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiofilters_validator_writes_total",
			Help: "Store writes performed by the startup normalizer",
		},
	)
	m.settingsWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_settings_group_writes_total",
			Help: "Settings group resyncs performed by the settings panel",
		},
		[]string{"group"},
	)
	m.rebuildRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_rebuild_requests_total",
			Help: "Rebuild requests issued by the settings panel",
		},
		[]string{"filter"},
	)
	m.settingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_settings_rejected_total",
			Help: "Settings edits rejected because a value was out of range",
		},
		[]string{"group"},
	)
	m.equalizerDisabled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audiofilters_equalizer_auto_disabled_total",
			Help: "Times the equalizer was disabled because every band was neutral",
		},
	)

	m.collectors = []prometheus.Collector{
		m.instancesCreated,
		m.unknownLookups,
		m.validatorResets,
		m.validatorWrites,
		m.settingsWrites,
		m.rebuildRequests,
		m.settingsRejected,
		m.equalizerDisabled,
	}
}

// Describe implements prometheus.Collector
func (m *FilterMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *FilterMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

func (m *FilterMetrics) RecordInstanceCreated(name, kind string) {
	m.instancesCreated.WithLabelValues(name, kind).Inc()
}

func (m *FilterMetrics) RecordUnknownLookup() {
	m.unknownLookups.Inc()
}

func (m *FilterMetrics) RecordValidatorReset(key string) {
	m.validatorResets.WithLabelValues(key).Inc()
}

func (m *FilterMetrics) RecordValidatorWrites(n int) {
	m.validatorWrites.Add(float64(n))
}

func (m *FilterMetrics) RecordEqualizerAutoDisabled() {
	m.equalizerDisabled.Inc()
}

func (m *FilterMetrics) RecordSettingsWrite(group string) {
	m.settingsWrites.WithLabelValues(group).Inc()
}

func (m *FilterMetrics) RecordSettingsRejected(group string) {
	m.settingsRejected.WithLabelValues(group).Inc()
}

func (m *FilterMetrics) RecordRebuildRequest(filter string) {
	m.rebuildRequests.WithLabelValues(filter).Inc()
}
