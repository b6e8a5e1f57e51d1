package dsp

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directConvolve(signal, kernel []float64) []float64 {
	out := make([]float64, len(signal))
	for n := range signal {
		for k, h := range kernel {
			if n-k >= 0 {
				out[n] += signal[n-k] * h
			}
		}
	}
	return out
}

func TestDesignLinearPhaseFIRFlatIsDelayedImpulse(t *testing.T) {
	t.Parallel()

	kernel, err := DesignLinearPhaseFIR(256, 48000, []float64{100, 1000, 10000}, []float64{0, 0, 0})
	require.NoError(t, err)
	require.Len(t, kernel, 256)

	for i, v := range kernel {
		if i == 128 {
			assert.InDelta(t, 1, v, 1e-9)
			continue
		}
		assert.InDelta(t, 0, v, 1e-9, "tap %d", i)
	}
}

func TestDesignLinearPhaseFIRIsSymmetric(t *testing.T) {
	t.Parallel()

	kernel, err := DesignLinearPhaseFIR(1024, 44100, []float64{200, 2000, 18000}, []float64{6, -3, 2})
	require.NoError(t, err)

	for m := 1; m < 512; m++ {
		assert.InDelta(t, kernel[512-m], kernel[512+m], 1e-12)
	}
}

func TestDesignLinearPhaseFIRGain(t *testing.T) {
	t.Parallel()

	const gain = -6.0
	kernel, err := DesignLinearPhaseFIR(512, 48000, []float64{100, 10000}, []float64{gain, gain})
	require.NoError(t, err)

	sum := 0.0
	for _, v := range kernel {
		sum += v
	}
	assert.InDelta(t, math.Pow(10, gain/20), sum, 1e-3, "DC gain")
}

func TestDesignLinearPhaseFIRMuted(t *testing.T) {
	t.Parallel()

	kernel, err := DesignLinearPhaseFIR(256, 48000, []float64{100, 10000}, []float64{math.Inf(-1), math.Inf(-1)})
	require.NoError(t, err)
	for _, v := range kernel {
		assert.InDelta(t, 0, v, 0)
	}
}

func TestDesignLinearPhaseFIRRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := DesignLinearPhaseFIR(300, 48000, []float64{100}, []float64{0})
	require.Error(t, err)
	_, err = DesignLinearPhaseFIR(256, 48000, []float64{100, 200}, []float64{0})
	require.Error(t, err)
	_, err = DesignLinearPhaseFIR(256, 0, []float64{100}, []float64{0})
	require.Error(t, err)
}

func TestConvolverMatchesDirectConvolution(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	for _, kernelLen := range []int{16, 1024} {
		kernel := make([]float64, kernelLen)
		for i := range kernel {
			kernel[i] = rng.Float64()*2 - 1
		}
		signal := make([]float64, 3000)
		for i := range signal {
			signal[i] = rng.Float64()*2 - 1
		}
		want := directConvolve(signal, kernel)

		conv := NewConvolver(kernel)
		require.NotNil(t, conv)
		got := make([]float64, 0, len(signal))
		// Uneven block sizes exercise the carried history.
		for start, step := 0, 1; start < len(signal); step = step*3 + 1 {
			end := min(start+step, len(signal))
			block := append([]float64(nil), signal[start:end]...)
			conv.Process(block, block)
			got = append(got, block...)
			start = end
		}

		require.Len(t, got, len(want))
		for i := range want {
			require.InDelta(t, want[i], got[i], 1e-9, "kernel %d sample %d", kernelLen, i)
		}
	}
}

func TestConvolverReset(t *testing.T) {
	t.Parallel()

	conv := NewConvolver([]float64{0, 1})
	out := []float64{5}
	conv.Process(out, out)
	assert.InDelta(t, 0, out[0], 0)

	conv.Reset()
	out = []float64{7}
	conv.Process(out, out)
	assert.InDelta(t, 0, out[0], 0, "history cleared")

	assert.Nil(t, NewConvolver(nil))
}

func TestDelayLine(t *testing.T) {
	t.Parallel()

	d := NewDelayLine(3)
	assert.Equal(t, 3, d.Len())

	var out []float64
	for _, x := range []float64{1, 2, 3, 4, 5} {
		out = append(out, d.Push(x))
	}
	assert.Equal(t, []float64{0, 0, 0, 1, 2}, out)
	assert.InDelta(t, 3, d.Peek(), 0)

	d.Reset()
	assert.InDelta(t, 0, d.Peek(), 0)
	assert.Equal(t, 1, NewDelayLine(0).Len())
}

func TestPeakCompressorLimitsLoudSignal(t *testing.T) {
	t.Parallel()

	c := NewPeakCompressor(CompressorParams{PeakLimit: 0.5, ReleaseTime: 0.2, FastRatio: 0.9, OverallRatio: 0.6}, 48000)

	peak := 0.0
	for i := range 48000 {
		frame := []float64{math.Sin(2 * math.Pi * 440 * float64(i) / 48000)}
		c.ProcessFrame(frame)
		peak = max(peak, math.Abs(frame[0]))
	}
	assert.LessOrEqual(t, peak, 0.5)
	assert.Less(t, c.Gain(), 1.0)
}

func TestPeakCompressorBoostsQuietSignal(t *testing.T) {
	t.Parallel()

	c := NewPeakCompressor(CompressorParams{PeakLimit: 0.9, ReleaseTime: 0.05, FastRatio: 0.9, OverallRatio: 0.6}, 48000)
	for i := range 48000 {
		c.ProcessFrame([]float64{0.1 * math.Sin(2*math.Pi*440*float64(i)/48000)})
	}
	assert.Greater(t, c.Gain(), 1.5)
	assert.LessOrEqual(t, c.Gain(), maxCompressorGain)
}

func TestPeakCompressorZeroRatioIsTransparentBelowLimit(t *testing.T) {
	t.Parallel()

	c := NewPeakCompressor(CompressorParams{PeakLimit: 1, ReleaseTime: 0.2, FastRatio: 0.9}, 48000)
	frame := []float64{0.25, -0.5}
	c.ProcessFrame(frame)
	assert.Equal(t, []float64{0.25, -0.5}, frame)

	c.Reset()
	assert.InDelta(t, 1, c.Gain(), 0)
}

func TestKernelCacheReusesKernels(t *testing.T) {
	t.Parallel()

	c := NewKernelCache(DefaultKernelTTL)
	freqs := []float64{100, 1000, 10000}

	a, err := c.Design(256, 48000, freqs, []float64{0, 3, 0})
	require.NoError(t, err)
	b, err := c.Design(256, 48000, freqs, []float64{0, 3, 0})
	require.NoError(t, err)
	assert.Same(t, &a[0], &b[0])
	assert.Equal(t, 1, c.Len())

	d, err := c.Design(256, 44100, freqs, []float64{0, 3, 0})
	require.NoError(t, err)
	assert.NotSame(t, &a[0], &d[0])
	assert.Equal(t, 2, c.Len())

	_, err = c.Design(100, 48000, freqs, []float64{0, 3, 0})
	require.Error(t, err)
	_, err = c.Design(256, 48000, freqs, []float64{0})
	require.Error(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestKernelCacheExpires(t *testing.T) {
	t.Parallel()

	c := NewKernelCache(time.Nanosecond)
	freqs := []float64{100, 1000}

	a, err := c.Design(256, 48000, freqs, []float64{0, 0})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	b, err := c.Design(256, 48000, freqs, []float64{0, 0})
	require.NoError(t, err)
	assert.NotSame(t, &a[0], &b[0])
	assert.Equal(t, 1, c.Len(), "expired entry purged on store")
}

func TestDetectCPU(t *testing.T) {
	t.Parallel()

	info := DetectCPU()
	assert.NotNil(t, info.SIMD)
	assert.GreaterOrEqual(t, info.LogicalCores, 0)
	for _, name := range info.SIMD {
		assert.NotEmpty(t, name)
	}
}
