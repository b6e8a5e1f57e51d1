package conf

// Default values for every group.
const (
	DefaultEqualizerNBits   = 10
	DefaultEqualizerCount   = 8
	DefaultEqualizerMinFreq = 200
	DefaultEqualizerMaxFreq = 18000

	// NeutralBand is the band value that leaves the signal unchanged.
	NeutralBand = 50

	DefaultEchoDelay    = 500
	DefaultEchoVolume   = 50
	DefaultEchoFeedback = 50

	DefaultCompressorPeakPercent  = 90
	DefaultCompressorReleaseTime  = 0.2
	DefaultCompressorFastRatio    = 0.9
	DefaultCompressorOverallRatio = 0.6
)

// Default is a key paired with the value written when the key is absent.
type Default struct {
	Key   string
	Value any
}

// Defaults returns the initial value of every fixed key, in initialization order.
// Equalizer band entries depend on the band count and are handled separately.
func Defaults() []Default {
	return []Default{
		{KeyBS2B, false},
		{KeyEqualizer, false},
		{KeyEqualizerNBits, DefaultEqualizerNBits},
		{KeyEqualizerCount, DefaultEqualizerCount},
		{KeyEqualizerMinFreq, DefaultEqualizerMinFreq},
		{KeyEqualizerMaxFreq, DefaultEqualizerMaxFreq},
		{KeyVoiceRemoval, false},
		{KeyPhaseReverse, false},
		{KeyReverseRight, false},
		{KeyEcho, false},
		{KeyEchoDelay, DefaultEchoDelay},
		{KeyEchoVolume, DefaultEchoVolume},
		{KeyEchoFeedback, DefaultEchoFeedback},
		{KeyEchoSurround, false},
		{KeyCompressor, false},
		{KeyCompressorPeakPercent, DefaultCompressorPeakPercent},
		{KeyCompressorReleaseTime, DefaultCompressorReleaseTime},
		{KeyCompressorFastRatio, DefaultCompressorFastRatio},
		{KeyCompressorOverallRatio, DefaultCompressorOverallRatio},
	}
}

// IntRange is an inclusive range with the value used to replace stored
// values that fall outside it.
type IntRange struct {
	Key     string
	Min     int
	Max     int
	Default int
}

// Contains reports whether v lies within the range.
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to the range.
func (r IntRange) Clamp(v int) int {
	return min(max(v, r.Min), r.Max)
}

// Stored values outside these ranges are replaced with the default, not clamped.
var (
	EqualizerNBitsRange   = IntRange{KeyEqualizerNBits, 8, 16, DefaultEqualizerNBits}
	EqualizerCountRange   = IntRange{KeyEqualizerCount, 2, 20, DefaultEqualizerCount}
	EqualizerMinFreqRange = IntRange{KeyEqualizerMinFreq, 10, 300, DefaultEqualizerMinFreq}
	EqualizerMaxFreqRange = IntRange{KeyEqualizerMaxFreq, 10000, 96000, DefaultEqualizerMaxFreq}
)

// EqualizerRanges lists the range-checked equalizer keys in check order.
func EqualizerRanges() []IntRange {
	return []IntRange{EqualizerNBitsRange, EqualizerCountRange, EqualizerMinFreqRange, EqualizerMaxFreqRange}
}

// Input ranges accepted by the settings panel.
var (
	EchoDelayRange    = IntRange{KeyEchoDelay, 1, 1000, DefaultEchoDelay}
	EchoVolumeRange   = IntRange{KeyEchoVolume, 1, 100, DefaultEchoVolume}
	EchoFeedbackRange = IntRange{KeyEchoFeedback, 1, 100, DefaultEchoFeedback}
	BandValueRange    = IntRange{"", 0, 100, NeutralBand}

	CompressorPeakRange = IntRange{KeyCompressorPeakPercent, 1, 100, DefaultCompressorPeakPercent}
)
