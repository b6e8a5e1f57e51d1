package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Rebuild outcomes
const (
	RebuildInstalled = "installed"
	RebuildRemoved   = "removed"
	RebuildSkipped   = "skipped"
	RebuildFailed    = "failed"
)

// PipelineMetrics covers the live filter slots.
type PipelineMetrics struct {
	registry *prometheus.Registry

	rebuilds        *prometheus.CounterVec
	rebuildDuration *prometheus.HistogramVec
	slotActive      *prometheus.GaugeVec
	processedFrames *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	filterLatency   *prometheus.GaugeVec

	collectors []prometheus.Collector
}

// NewPipelineMetrics creates and registers the pipeline metrics
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.rebuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_pipeline_rebuilds_total",
			Help: "Slot rebuilds by filter and outcome",
		},
		[]string{"filter", "result"},
	)
	m.rebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audiofilters_pipeline_rebuild_duration_seconds",
			Help:    "Time spent constructing and initializing a replacement filter",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"filter"},
	)
	m.slotActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audiofilters_pipeline_slot_active",
			Help: "1 when the filter slot holds a live instance",
		},
		[]string{"filter"},
	)
	m.processedFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofilters_pipeline_processed_frames_total",
			Help: "Audio frames passed through each filter",
		},
		[]string{"filter"},
	)
	m.processDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audiofilters_pipeline_process_duration_seconds",
			Help:    "Time spent filtering one buffer",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
		[]string{"filter"},
	)
	m.filterLatency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audiofilters_pipeline_filter_latency_seconds",
			Help: "Latency reported by the filter for the last buffer",
		},
		[]string{"filter"},
	)

	m.collectors = []prometheus.Collector{
		m.rebuilds,
		m.rebuildDuration,
		m.slotActive,
		m.processedFrames,
		m.processDuration,
		m.filterLatency,
	}
}

// Describe implements prometheus.Collector
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

func (m *PipelineMetrics) RecordRebuild(filter, result string, seconds float64) {
	m.rebuilds.WithLabelValues(filter, result).Inc()
	if result == RebuildInstalled {
		m.rebuildDuration.WithLabelValues(filter).Observe(seconds)
	}
}

func (m *PipelineMetrics) SetSlotActive(filter string, active bool) {
	v := 0.0
	if active {
		v = 1
	}
	m.slotActive.WithLabelValues(filter).Set(v)
}

func (m *PipelineMetrics) RecordProcessed(filter string, frames int, seconds, latency float64) {
	m.processedFrames.WithLabelValues(filter).Add(float64(frames))
	m.processDuration.WithLabelValues(filter).Observe(seconds)
	m.filterLatency.WithLabelValues(filter).Set(latency)
}
