package conf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualizerConfigFrequencies(t *testing.T) {
	t.Parallel()

	c := EqualizerConfig{Count: 3, MinFreq: 100, MaxFreq: 10000}
	freqs := c.Frequencies()

	require.Len(t, freqs, 3)
	assert.InDelta(t, 100, freqs[0], 1e-9)
	assert.InDelta(t, 1000, freqs[1], 1e-9)
	assert.InDelta(t, 10000, freqs[2], 1e-9)
}

func TestEqualizerConfigBands(t *testing.T) {
	t.Parallel()

	c := EqualizerConfig{NBits: 12, Count: 2, Bands: []int{40, 60, 70}}

	assert.Equal(t, 4096, c.FilterSize())
	assert.Equal(t, 40, c.Preamp())
	assert.Equal(t, 60, c.BandGain(0))
	assert.Equal(t, 70, c.BandGain(1))
	assert.Equal(t, NeutralBand, c.BandGain(2))
}

func TestEqualizerSaveLayoutCreatesNewBands(t *testing.T) {
	t.Parallel()

	store, _ := newMemoryStore(t)
	_, err := NormalizeSettings(store)
	require.NoError(t, err)
	require.NoError(t, store.Set(EqualizerBandKey(3), 77))

	c := LoadEqualizer(store)
	c.Count = 10
	c.NBits = 14
	require.NoError(t, c.SaveLayout(store))

	reloaded := LoadEqualizer(store)
	assert.Equal(t, 14, reloaded.NBits)
	assert.Equal(t, 10, reloaded.Count)
	require.Len(t, reloaded.Bands, 11)
	assert.Equal(t, 77, reloaded.BandGain(3))
	assert.True(t, store.IsSet(EqualizerBandKey(9)))
}

func TestEchoConfigRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newMemoryStore(t)
	want := EchoConfig{Enabled: true, Delay: 320, Volume: 40, Feedback: 25, Surround: true}
	require.NoError(t, want.Save(store))

	assert.Equal(t, want, LoadEcho(store))
	assert.Equal(t, 5, store.WriteCount())
}

func TestCompressorConfigRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newMemoryStore(t)
	want := CompressorConfig{Enabled: true, PeakPercent: 85, ReleaseTime: 0.5, FastRatio: 0.9, OverallRatio: 0.6}
	require.NoError(t, want.Save(store))

	assert.Equal(t, want, LoadCompressor(store))
}

func TestBoundedGroupConfigs(t *testing.T) {
	t.Parallel()

	echo := EchoConfig{Enabled: true, Delay: 1e8, Volume: 0, Feedback: 101}.Bounded()
	assert.Equal(t, EchoConfig{Enabled: true, Delay: 1000, Volume: 1, Feedback: 100}, echo)

	inRange := EchoConfig{Delay: 320, Volume: 40, Feedback: 25}
	assert.Equal(t, inRange, inRange.Bounded())

	comp := CompressorConfig{PeakPercent: 250, ReleaseTime: 0, FastRatio: 3, OverallRatio: math.NaN()}.Bounded()
	assert.Equal(t, 100, comp.PeakPercent)
	assert.InDelta(t, 0.05, comp.ReleaseTime, 1e-12)
	assert.InDelta(t, 1.0, comp.FastRatio, 1e-12)
	assert.InDelta(t, DefaultCompressorOverallRatio, comp.OverallRatio, 1e-12)
}

func TestPhaseReverseConfigRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newMemoryStore(t)
	require.NoError(t, PhaseReverseConfig{Enabled: true, ReverseRight: true}.Save(store))

	got := LoadPhaseReverse(store)
	assert.True(t, got.Enabled)
	assert.True(t, got.ReverseRight)
}
