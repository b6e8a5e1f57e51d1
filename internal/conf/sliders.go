package conf

import "math"

// Compressor controls are 1..20 sliders. Peak percent is stored as five
// times the slider value; the release time and both ratios as slider/20.
const (
	SliderMin = 1
	SliderMax = 20

	peakPercentPerStep = 5
	ratioSteps         = 20
	ratioEpsilon       = 1e-9
)

// SliderInRange reports whether v is a valid compressor slider position.
func SliderInRange(v int) bool {
	return v >= SliderMin && v <= SliderMax
}

// PeakPercentFromSlider maps a slider position to Compressor/PeakPercent.
func PeakPercentFromSlider(v int) int {
	return v * peakPercentPerStep
}

// RatioFromSlider maps a slider position to a release time or ratio in (0,1].
func RatioFromSlider(v int) float64 {
	return float64(v) / ratioSteps
}

// SliderFromPeakPercent is the inverse of PeakPercentFromSlider, truncated
// and kept within the slider range.
func SliderFromPeakPercent(p int) int {
	return clampSlider(p / peakPercentPerStep)
}

// SliderFromRatio is the inverse of RatioFromSlider, truncated and kept
// within the slider range. ratioEpsilon absorbs float error so a stored
// slider/20 maps back to the same slider.
func SliderFromRatio(r float64) int {
	return clampSlider(int(math.Floor(r*ratioSteps + ratioEpsilon)))
}

func clampSlider(v int) int {
	return min(max(v, SliderMin), SliderMax)
}

// Equalizer quality is offered as nine steps mapping to nbits 8..16.
const (
	QualitySteps   = 9
	minQualityBits = 8
)

// NBitsFromQuality maps a quality index 0..8 to nbits.
func NBitsFromQuality(index int) int {
	return minQualityBits + index
}

// QualityFromNBits maps nbits to a quality index, or -1 when nbits is not
// a selectable quality.
func QualityFromNBits(nbits int) int {
	index := nbits - minQualityBits
	if index < 0 || index >= QualitySteps {
		return -1
	}
	return index
}
