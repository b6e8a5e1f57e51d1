package biquad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = 48000.0

func db(v float64) float64 { return 20 * math.Log10(v) }

func TestFilterIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Filter{}).IsZero())

	f, err := NewLowPass(rate, 1000, 0.707, 1)
	require.NoError(t, err)
	assert.False(t, f.IsZero())
	assert.Equal(t, LowPass, f.Kind())
}

func TestConstructorsRejectInvalidParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func() (*Filter, error)
	}{
		{"zero passes", func() (*Filter, error) { return NewLowPass(rate, 1000, 0.7, 0) }},
		{"zero q", func() (*Filter, error) { return NewHighPass(rate, 1000, 0, 1) }},
		{"above nyquist", func() (*Filter, error) { return NewHighShelf(rate, 30000, 0.7, 3, 1) }},
		{"zero frequency", func() (*Filter, error) { return NewLowShelf(rate, 0, 0.7, 3, 1) }},
		{"zero width", func() (*Filter, error) { return NewPeaking(rate, 1000, 0, 3, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := tt.fn()
			require.Error(t, err)
			assert.Nil(t, f)
		})
	}
}

func TestMagnitudeResponses(t *testing.T) {
	t.Parallel()

	lp, err := NewLowPass(rate, 1000, math.Sqrt2/2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, db(lp.Magnitude(20, rate)), 0.1)
	assert.InDelta(t, -3, db(lp.Magnitude(1000, rate)), 0.1)
	assert.Less(t, db(lp.Magnitude(10000, rate)), -35.0)

	lp2, err := NewLowPass(rate, 1000, math.Sqrt2/2, 2)
	require.NoError(t, err)
	assert.InDelta(t, -6, db(lp2.Magnitude(1000, rate)), 0.2)

	hp, err := NewHighPass(rate, 1000, math.Sqrt2/2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, db(hp.Magnitude(15000, rate)), 0.2)
	assert.Less(t, db(hp.Magnitude(50, rate)), -40.0)

	hs, err := NewHighShelf(rate, 2000, math.Sqrt2/2, 6, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, db(hs.Magnitude(20, rate)), 0.1)
	assert.InDelta(t, 6, db(hs.Magnitude(20000, rate)), 0.3)

	ls, err := NewLowShelf(rate, 200, math.Sqrt2/2, -6, 1)
	require.NoError(t, err)
	assert.InDelta(t, -6, db(ls.Magnitude(10, rate)), 0.3)
	assert.InDelta(t, 0, db(ls.Magnitude(10000, rate)), 0.1)

	pk, err := NewPeaking(rate, 1000, 1, 9, 1)
	require.NoError(t, err)
	assert.InDelta(t, 9, db(pk.Magnitude(1000, rate)), 0.1)
	assert.InDelta(t, 0, db(pk.Magnitude(20, rate)), 0.2)
}

func TestApplyBatchMatchesProcess(t *testing.T) {
	t.Parallel()

	input := make([]float64, 256)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 440 * float64(i) / rate)
	}

	a, err := NewPeaking(rate, 440, 1, 6, 2)
	require.NoError(t, err)
	b, err := NewPeaking(rate, 440, 1, 6, 2)
	require.NoError(t, err)

	batch := append([]float64(nil), input...)
	a.ApplyBatch(batch)

	for i, x := range input {
		assert.InDelta(t, batch[i], b.Process(x), 1e-12)
	}
}

func TestLowPassSettlesToDC(t *testing.T) {
	t.Parallel()

	f, err := NewLowPass(rate, 500, 0.707, 1)
	require.NoError(t, err)

	var y float64
	for range 4800 {
		y = f.Process(1)
	}
	assert.InDelta(t, 1, y, 1e-6)

	f.Reset()
	assert.InDelta(t, 0, f.Process(0), 0)
}
