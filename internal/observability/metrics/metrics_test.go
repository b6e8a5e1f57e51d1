package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewFilterMetrics(registry)
	require.NoError(t, err)

	m.RecordInstanceCreated("BS2B", "audio_filter")
	m.RecordInstanceCreated("BS2B", "audio_filter")
	m.RecordUnknownLookup()
	m.RecordValidatorReset("Equalizer/nbits")
	m.RecordValidatorWrites(28)
	m.RecordRebuildRequest("Echo")

	assert.InDelta(t, 2, testutil.ToFloat64(m.instancesCreated.WithLabelValues("BS2B", "audio_filter")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.unknownLookups), 0)
	assert.InDelta(t, 28, testutil.ToFloat64(m.validatorWrites), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rebuildRequests.WithLabelValues("Echo")), 0)

	_, err = NewFilterMetrics(registry)
	assert.Error(t, err, "registering twice must fail")
}

func TestPipelineMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.RecordRebuild("Echo", RebuildInstalled, 0.002)
	m.RecordRebuild("Echo", RebuildRemoved, 0)
	m.SetSlotActive("Echo", true)
	m.RecordProcessed("Echo", 512, 0.0001, 0)

	assert.InDelta(t, 1, testutil.ToFloat64(m.rebuilds.WithLabelValues("Echo", RebuildInstalled)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rebuilds.WithLabelValues("Echo", RebuildRemoved)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.slotActive.WithLabelValues("Echo")), 0)
	assert.InDelta(t, 512, testutil.ToFloat64(m.processedFrames.WithLabelValues("Echo")), 0)

	count, err := testutil.GatherAndCount(registry, "audiofilters_pipeline_rebuild_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
