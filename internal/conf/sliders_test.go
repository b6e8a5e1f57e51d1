package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioFromSlider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slider int
		want   float64
	}{
		{1, 0.05},
		{4, 0.2},
		{10, 0.5},
		{20, 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RatioFromSlider(tt.slider), 1e-12, "slider %d", tt.slider)
	}
}

func TestSliderInverseMappings(t *testing.T) {
	t.Parallel()

	for v := SliderMin; v <= SliderMax; v++ {
		assert.Equal(t, v, SliderFromPeakPercent(PeakPercentFromSlider(v)))
		assert.Equal(t, v, SliderFromRatio(RatioFromSlider(v)))
	}

	assert.Equal(t, 18, SliderFromPeakPercent(DefaultCompressorPeakPercent))
	assert.Equal(t, 4, SliderFromRatio(DefaultCompressorReleaseTime))
	assert.Equal(t, SliderMin, SliderFromRatio(0))
	assert.Equal(t, SliderMax, SliderFromPeakPercent(250))
}

func TestSliderFromStoredValueTruncates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 18, SliderFromPeakPercent(94))
	assert.Equal(t, 18, SliderFromPeakPercent(90))
	assert.Equal(t, 3, SliderFromRatio(0.19))
	assert.Equal(t, 12, SliderFromRatio(0.6))
	assert.Equal(t, SliderMin, SliderFromPeakPercent(4))
}

func TestSliderInRange(t *testing.T) {
	t.Parallel()

	assert.False(t, SliderInRange(0))
	assert.True(t, SliderInRange(1))
	assert.True(t, SliderInRange(20))
	assert.False(t, SliderInRange(21))
}

func TestQualityMapping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, NBitsFromQuality(0))
	assert.Equal(t, 16, NBitsFromQuality(QualitySteps-1))
	assert.Equal(t, 2, QualityFromNBits(DefaultEqualizerNBits))
	assert.Equal(t, -1, QualityFromNBits(17))
}
