package conf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSettingsFreshStore(t *testing.T) {
	t.Parallel()

	store, _ := newMemoryStore(t)

	report, err := NormalizeSettings(store)
	require.NoError(t, err)

	assert.Len(t, report.Initialized, len(Defaults()))
	assert.Equal(t, DefaultEqualizerCount+1, report.BandsCreated)
	assert.Empty(t, report.Reset)
	assert.False(t, report.EqualizerDisabled)
	assert.Equal(t, store.WriteCount(), report.Writes)

	assert.Equal(t, DefaultEqualizerNBits, store.GetInt(KeyEqualizerNBits))
	assert.Equal(t, DefaultEchoDelay, store.GetInt(KeyEchoDelay))
	assert.InDelta(t, DefaultCompressorOverallRatio, store.GetFloat64(KeyCompressorOverallRatio), 1e-9)
	for i := PreampBand; i < DefaultEqualizerCount; i++ {
		assert.Equal(t, NeutralBand, store.GetInt(EqualizerBandKey(i)), "band %d", i)
	}
}

func TestNormalizeSettingsIsIdempotent(t *testing.T) {
	t.Parallel()

	store, _ := newStoreFromYAML(t, `
Equalizer: true
Equalizer/nbits: 42
Equalizer/count: 3
Equalizer/0: 70
`)

	first, err := NormalizeSettings(store)
	require.NoError(t, err)
	require.True(t, first.Changed())
	before := store.Snapshot()
	writes := store.WriteCount()

	second, err := NormalizeSettings(store)
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Equal(t, writes, store.WriteCount())
	assert.Equal(t, before, store.Snapshot())
}

func TestNormalizeSettingsResetsOutOfRangeValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		value string
		want  int
	}{
		{KeyEqualizerNBits, "7", DefaultEqualizerNBits},
		{KeyEqualizerNBits, "17", DefaultEqualizerNBits},
		{KeyEqualizerNBits, "-3", DefaultEqualizerNBits},
		{KeyEqualizerNBits, "8", 8},
		{KeyEqualizerNBits, "16", 16},
		{KeyEqualizerCount, "1", DefaultEqualizerCount},
		{KeyEqualizerCount, "21", DefaultEqualizerCount},
		{KeyEqualizerCount, "2", 2},
		{KeyEqualizerCount, "20", 20},
		{KeyEqualizerMinFreq, "9", DefaultEqualizerMinFreq},
		{KeyEqualizerMinFreq, "301", DefaultEqualizerMinFreq},
		{KeyEqualizerMinFreq, "10", 10},
		{KeyEqualizerMaxFreq, "9999", DefaultEqualizerMaxFreq},
		{KeyEqualizerMaxFreq, "96001", DefaultEqualizerMaxFreq},
		{KeyEqualizerMaxFreq, "96000", 96000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%s", tt.key, tt.value), func(t *testing.T) {
			t.Parallel()

			store, _ := newStoreFromYAML(t, fmt.Sprintf("%s: %s\n", tt.key, tt.value))

			report, err := NormalizeSettings(store)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.GetInt(tt.key))

			reset := false
			for _, r := range report.Reset {
				if r.Key == tt.key {
					reset = true
				}
			}
			assert.Equal(t, tt.want != mustAtoi(t, tt.value), reset)
		})
	}
}

func TestNormalizeSettingsNonNumericNBits(t *testing.T) {
	t.Parallel()

	store, _ := newStoreFromYAML(t, "Equalizer/nbits: lots\n")

	_, err := NormalizeSettings(store)
	require.NoError(t, err)
	assert.Equal(t, DefaultEqualizerNBits, store.GetInt(KeyEqualizerNBits))
	assert.Equal(t, 1<<DefaultEqualizerNBits, LoadEqualizer(store).FilterSize())
}

func TestNormalizeSettingsBandEntriesFollowCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		count     int
		wantBands int
	}{
		{"minimum", 2, 2},
		{"maximum", 20, 20},
		{"out of range uses default", 25, DefaultEqualizerCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, _ := newStoreFromYAML(t, fmt.Sprintf("Equalizer/count: %d\nEqualizer/1: 80\n", tt.count))

			report, err := NormalizeSettings(store)
			require.NoError(t, err)

			// Equalizer/1 was already present.
			assert.Equal(t, tt.wantBands, report.BandsCreated)
			for i := PreampBand; i < tt.wantBands; i++ {
				assert.True(t, store.IsSet(EqualizerBandKey(i)), "band %d", i)
			}
			assert.False(t, store.IsSet(EqualizerBandKey(tt.wantBands)))
			assert.Equal(t, 80, store.GetInt(EqualizerBandKey(1)))
			assert.Len(t, LoadEqualizer(store).Bands, tt.wantBands+1)
		})
	}
}

func TestNormalizeSettingsDisablesNeutralEqualizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yaml        string
		wantEnabled bool
	}{
		{
			name:        "enabled and all neutral",
			yaml:        "Equalizer: true\nEqualizer/count: 2\n",
			wantEnabled: false,
		},
		{
			name:        "one band differs",
			yaml:        "Equalizer: true\nEqualizer/count: 2\nEqualizer/1: 51\n",
			wantEnabled: true,
		},
		{
			name:        "preamp differs",
			yaml:        "Equalizer: true\nEqualizer/count: 2\nEqualizer/-1: 40\n",
			wantEnabled: true,
		},
		{
			name:        "disabled stays disabled",
			yaml:        "Equalizer: false\nEqualizer/count: 2\nEqualizer/0: 90\n",
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, _ := newStoreFromYAML(t, tt.yaml)
			wasEnabled := store.GetBool(KeyEqualizer)

			report, err := NormalizeSettings(store)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnabled, store.GetBool(KeyEqualizer))
			assert.Equal(t, wasEnabled && !tt.wantEnabled, report.EqualizerDisabled)
		})
	}
}

func TestNormalizeSettingsNilStore(t *testing.T) {
	t.Parallel()

	_, err := NormalizeSettings(nil)
	require.Error(t, err)
}
