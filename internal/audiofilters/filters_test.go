package audiofilters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp"
)

const testRate = 48000

func sine(freq float64, n int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}
	return out
}

func peak(data []float64, channel, channels, from int) float64 {
	p := 0.0
	for i := from*channels + channel; i < len(data); i += channels {
		p = max(p, math.Abs(data[i]))
	}
	return p
}

func TestFiltersDisabledByDefault(t *testing.T) {
	t.Parallel()

	b, _ := newTestBundle(t, "")
	for _, name := range FilterNames() {
		f, ok := b.CreateFilter(name)
		require.True(t, ok)
		assert.True(t, f.SetAudioParameters(2, testRate), name)
		assert.False(t, f.SetParams(), "%s is disabled on a fresh store", name)
	}
}

func TestSetAudioParametersRejectsUnsupportedFormats(t *testing.T) {
	t.Parallel()

	b, _ := newTestBundle(t, "")
	for _, name := range []string{NameBS2B, NameVoiceRemoval, NamePhaseReverse} {
		f, _ := b.CreateFilter(name)
		assert.False(t, f.SetAudioParameters(1, testRate), "%s needs stereo", name)
	}
	for _, name := range FilterNames() {
		f, _ := b.CreateFilter(name)
		assert.False(t, f.SetAudioParameters(0, testRate), name)
		assert.False(t, f.SetAudioParameters(2, 0), name)
	}
}

func TestBS2BCrossfeed(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, store.Set(conf.KeyBS2B, true))

	f := newBS2B(store)
	require.True(t, f.SetAudioParameters(2, testRate))
	require.True(t, f.SetParams())

	const n = 9600
	settle := n / 2

	// A centred low tone keeps its level.
	mono := sine(100, n, 0.5)
	buf := newBuffer(2, testRate, interleave(mono, mono))
	assert.Zero(t, f.Filter(buf, false))
	assert.InDelta(t, 0.5, peak(buf.Data, 0, 2, settle), 0.02)
	assert.InDelta(t, 0.5, peak(buf.Data, 1, 2, settle), 0.02)

	// A hard-left low tone leaks into the right channel.
	f.ClearBuffers()
	silent := make([]float64, n)
	buf = newBuffer(2, testRate, interleave(sine(100, n, 0.5), silent))
	f.Filter(buf, false)
	crossGain := math.Pow(10, -bs2bFeedDB/20)
	assert.InDelta(t, 0.5*crossGain/(1+crossGain), peak(buf.Data, 1, 2, settle), 0.02)

	// A hard-left high tone barely leaks.
	f.ClearBuffers()
	buf = newBuffer(2, testRate, interleave(sine(10000, n, 0.5), silent))
	f.Filter(buf, false)
	assert.Less(t, peak(buf.Data, 1, 2, settle), 0.02)
	assert.InDelta(t, 0.5, peak(buf.Data, 0, 2, settle), 0.03)
}

func TestVoiceRemoval(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	f := newVoiceRemoval(store)
	require.True(t, f.SetAudioParameters(2, testRate))

	buf := newBuffer(2, testRate, []float64{0.5, 0.5, 0.3, 0.1, -0.2, 0.4})
	f.Filter(buf, false)
	assert.InDeltaSlice(t, []float64{0, 0, 0.2, -0.2, -0.6, 0.6}, buf.Data, 1e-12)
}

func TestPhaseReverse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		right bool
		want  []float64
	}{
		{"left", false, []float64{-0.5, 0.25, 0.1, -0.3}},
		{"right", true, []float64{0.5, -0.25, -0.1, 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, store := newTestBundle(t, "")
			require.NoError(t, conf.PhaseReverseConfig{Enabled: true, ReverseRight: tt.right}.Save(store))

			f := newPhaseReverse(store)
			require.True(t, f.SetAudioParameters(2, testRate))
			require.True(t, f.SetParams())
			assert.Equal(t, tt.right, f.ReverseRight())

			buf := newBuffer(2, testRate, []float64{0.5, 0.25, -0.1, -0.3})
			f.Filter(buf, false)
			assert.InDeltaSlice(t, tt.want, buf.Data, 1e-12)
		})
	}
}

func TestEchoImpulse(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, conf.EchoConfig{Enabled: true, Delay: 10, Volume: 50, Feedback: 50}.Save(store))

	const rate = 1000
	f := newEcho(store)
	require.True(t, f.SetAudioParameters(1, rate))
	require.True(t, f.SetParams())
	require.Equal(t, 10, f.DelaySamples())

	data := make([]float64, 35)
	data[0] = 1
	buf := newBuffer(1, rate, data)
	f.Filter(buf, false)

	assert.InDelta(t, 1, buf.Data[0], 1e-12)
	assert.InDelta(t, 0.5, buf.Data[10], 1e-12)
	assert.InDelta(t, 0.25, buf.Data[20], 1e-12)
	assert.InDelta(t, 0.125, buf.Data[30], 1e-12)
	assert.InDelta(t, 0, buf.Data[15], 1e-12)
}

func TestEchoSurroundCrossesChannels(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, conf.EchoConfig{Enabled: true, Delay: 5, Volume: 100, Feedback: 50, Surround: true}.Save(store))

	const rate = 1000
	f := newEcho(store)
	require.True(t, f.SetAudioParameters(2, rate))
	require.True(t, f.SetParams())

	left := make([]float64, 12)
	left[0] = 1
	buf := newBuffer(2, rate, interleave(left, make([]float64, 12)))
	f.Filter(buf, false)

	// The left impulse returns on the right after one delay.
	assert.InDelta(t, 0, buf.Data[5*2], 1e-12)
	assert.InDelta(t, 1, buf.Data[5*2+1], 1e-12)
	// and then back on the left, attenuated by the feedback.
	assert.InDelta(t, 0.5, buf.Data[10*2], 1e-12)
	assert.InDelta(t, 0, buf.Data[10*2+1], 1e-12)
}

func TestEchoBoundsStoredValues(t *testing.T) {
	t.Parallel()

	b, store := newTestBundle(t, "Echo: true\nEcho/Delay: 100000000\nEcho/Volume: 500\nEcho/Feedback: -3\n")

	f, ok := b.CreateFilter(NameEcho)
	require.True(t, ok)
	echo := f.(*Echo)
	require.True(t, echo.SetAudioParameters(2, testRate))
	require.True(t, echo.SetParams())

	assert.Equal(t, conf.EchoDelayRange.Max*testRate/1000, echo.DelaySamples())
	assert.Equal(t, conf.EchoVolumeRange.Max, echo.config.Volume)
	assert.Equal(t, conf.EchoFeedbackRange.Min, echo.config.Feedback)
	assert.Equal(t, 100000000, store.GetInt(conf.KeyEchoDelay), "stored value is left as written")
}

func TestDysonCompressorBoundsStoredValues(t *testing.T) {
	t.Parallel()

	b, _ := newTestBundle(t, "Compressor: true\nCompressor/PeakPercent: 0\nCompressor/ReleaseTime: 40\nCompressor/FastGainCompressionRatio: -2\n")

	f, ok := b.CreateFilter(NameDysonCompressor)
	require.True(t, ok)
	require.True(t, f.SetAudioParameters(2, testRate))
	require.True(t, f.SetParams())

	params := f.(*DysonCompressor).Params()
	assert.InDelta(t, 0.01, params.PeakLimit, 1e-12)
	assert.InDelta(t, 1.0, params.ReleaseTime, 1e-12)
	assert.InDelta(t, 0.05, params.FastRatio, 1e-12)
	assert.InDelta(t, conf.DefaultCompressorOverallRatio, params.OverallRatio, 1e-12)
}

func TestDysonCompressorLimitsPeaks(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, store.Set(conf.KeyCompressor, true))

	f := newDysonCompressor(store)
	require.True(t, f.SetAudioParameters(2, testRate))
	require.True(t, f.SetParams())
	assert.InDelta(t, 0.9, f.Params().PeakLimit, 1e-12)

	loud := sine(440, 4800, 1.0)
	buf := newBuffer(2, testRate, interleave(loud, loud))
	f.Filter(buf, false)
	assert.LessOrEqual(t, peak(buf.Data, 0, 2, 0), 0.9+1e-12)
	assert.LessOrEqual(t, peak(buf.Data, 1, 2, 0), 0.9+1e-12)
}

func TestEqualizerNeutralIsPureDelay(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, store.Set(conf.KeyEqualizerNBits, 8))
	require.NoError(t, store.Set(conf.KeyEqualizer, true))

	f := newEqualizer(store)
	require.True(t, f.SetAudioParameters(2, testRate))
	require.True(t, f.SetParams())
	require.Len(t, f.Kernel(), 256)
	assert.Equal(t, 128, f.BufferedSamples())

	const frames = 300
	left := make([]float64, frames)
	left[0] = 1
	right := make([]float64, frames)
	right[10] = -0.5
	buf := newBuffer(2, testRate, interleave(left, right))

	latency := f.Filter(buf, true)
	assert.InDelta(t, 128.0/testRate, latency, 1e-12)
	require.Len(t, buf.Data, 2*(frames+128), "flush appends the delayed tail")

	assert.InDelta(t, 1, buf.Data[128*2], 1e-9)
	assert.InDelta(t, -0.5, buf.Data[138*2+1], 1e-9)
	assert.InDelta(t, 0, buf.Data[129*2], 1e-9)
}

func TestEqualizerMutedPreampSilences(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, store.Set(conf.KeyEqualizerNBits, 9))
	require.NoError(t, store.Set(conf.EqualizerBandKey(conf.PreampBand), 0))
	require.NoError(t, store.Set(conf.KeyEqualizer, true))

	f := newEqualizer(store)
	require.True(t, f.SetAudioParameters(1, testRate))
	require.True(t, f.SetParams())

	buf := newBuffer(1, testRate, sine(1000, 2048, 0.5))
	f.Filter(buf, false)
	assert.Less(t, peak(buf.Data, 0, 1, 0), 1e-9)
}

func TestBandDecibels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value int
		want  float64
	}{
		{50, 0},
		{100, 12},
		{75, 6},
		{25, 20 * math.Log10(0.5)},
		{0, dsp.MinGainDB},
		{-5, dsp.MinGainDB},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, BandDecibels(tt.value), 1e-9, "value %d", tt.value)
	}
}

func TestEqualizerRebuildReusesKernel(t *testing.T) {
	t.Parallel()

	_, store := newTestBundle(t, "")
	require.NoError(t, store.Set(conf.KeyEqualizerNBits, 11))
	require.NoError(t, store.Set(conf.EqualizerBandKey(3), 71))
	require.NoError(t, store.Set(conf.KeyEqualizer, true))

	first := newEqualizer(store)
	require.True(t, first.SetAudioParameters(2, 44100))
	require.True(t, first.SetParams())

	second := newEqualizer(store)
	require.True(t, second.SetAudioParameters(2, 44100))
	require.True(t, second.SetParams())

	require.Len(t, second.Kernel(), 2048)
	assert.Same(t, &first.Kernel()[0], &second.Kernel()[0])
}
