package audiofilters

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/observability/metrics"
)

func TestModulesInfo(t *testing.T) {
	t.Parallel()

	b, _ := newTestBundle(t, "")
	want := []ModuleInfo{
		{"BS2B", KindAudioFilter},
		{"Equalizer", KindAudioFilter},
		{"Equalizer GUI", KindExtension},
		{"VoiceRemoval", KindAudioFilter},
		{"PhaseReverse", KindAudioFilter},
		{"Echo", KindAudioFilter},
		{"DysonCompressor", KindAudioFilter},
	}
	assert.Equal(t, want, b.ModulesInfo())

	// Callers get a copy.
	info := b.ModulesInfo()
	info[0].Name = "changed"
	assert.Equal(t, "BS2B", b.ModulesInfo()[0].Name)

	assert.Equal(t, []string{"BS2B", "Equalizer", "VoiceRemoval", "PhaseReverse", "Echo", "DysonCompressor"}, FilterNames())
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "audio_filter", KindAudioFilter.String())
	assert.Equal(t, "extension", KindExtension.String())
	assert.Equal(t, "unknown", Kind(42).String())

	text, err := KindExtension.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "extension", string(text))
}

func TestCreateInstanceMatchesCatalog(t *testing.T) {
	t.Parallel()

	b, _ := newTestBundle(t, "")
	for _, m := range b.ModulesInfo() {
		t.Run(m.Name, func(t *testing.T) {
			t.Parallel()

			instance := b.CreateInstance(m.Name)
			require.NotNil(t, instance)

			switch m.Kind {
			case KindAudioFilter:
				f, ok := instance.(AudioFilter)
				require.True(t, ok, "%s must be an AudioFilter", m.Name)
				assert.Equal(t, m.Name, f.Name())
			case KindExtension:
				e, ok := instance.(Extension)
				require.True(t, ok, "%s must be an Extension", m.Name)
				assert.Equal(t, m.Name, e.Name())
				assert.Equal(t, KindExtension, e.Kind())
			}

			assert.NotSame(t, instance, b.CreateInstance(m.Name), "every call returns a new instance")
		})
	}
}

func TestCreateInstanceUnknownName(t *testing.T) {
	t.Parallel()

	b, _ := newTestBundle(t, "")
	for _, name := range []string{"", "bs2b", "Equalizer Gui", "Reverb", " Echo"} {
		assert.Nil(t, b.CreateInstance(name), "name %q", name)
	}

	f, ok := b.CreateFilter(NameEqualizerGUI)
	assert.False(t, ok, "an extension is not a filter")
	assert.Nil(t, f)

	f, ok = b.CreateFilter("Reverb")
	assert.False(t, ok)
	assert.Nil(t, f)

	f, ok = b.CreateFilter(NameEcho)
	require.True(t, ok)
	assert.Equal(t, NameEcho, f.Name())
}

func TestNewNormalizesStore(t *testing.T) {
	t.Parallel()

	b, store := newTestBundle(t, "Equalizer/nbits: 30\nEqualizer/count: 4\n")

	assert.Equal(t, conf.DefaultEqualizerNBits, store.GetInt(conf.KeyEqualizerNBits))
	assert.Equal(t, 4, store.GetInt(conf.KeyEqualizerCount))
	assert.True(t, store.IsSet(conf.EqualizerBandKey(3)))
	assert.False(t, store.IsSet(conf.EqualizerBandKey(4)))

	report := b.ValidationReport()
	require.NotNil(t, report)
	require.Len(t, report.Reset, 1)
	assert.Equal(t, conf.KeyEqualizerNBits, report.Reset[0].Key)
	assert.Equal(t, 30, report.Reset[0].Was)
	assert.Same(t, conf.Store(store), b.Store())
}

func TestNewNilStore(t *testing.T) {
	t.Parallel()

	b, err := New(nil)
	require.Error(t, err)
	assert.Nil(t, b)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestBundleMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewFilterMetrics(registry)
	require.NoError(t, err)

	b, _ := newTestBundle(t, "Equalizer/count: 99\n", WithMetrics(m))
	b.CreateInstance(NameEcho)
	b.CreateInstance(NameEqualizerGUI)
	b.CreateInstance("nope")
	b.CreateInstance("nope either")

	expected := `
# HELP audiofilters_unknown_lookups_total Factory lookups for names not in the catalog
# TYPE audiofilters_unknown_lookups_total counter
audiofilters_unknown_lookups_total 2
# HELP audiofilters_validator_resets_total Stored values replaced by their defaults at startup
# TYPE audiofilters_validator_resets_total counter
audiofilters_validator_resets_total{key="Equalizer/count"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"audiofilters_unknown_lookups_total", "audiofilters_validator_resets_total"))

	count, err := testutil.GatherAndCount(registry, "audiofilters_instances_created_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per created name")
}
