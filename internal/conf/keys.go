package conf

import "strconv"

// Setting keys. Spellings are part of the on-disk format and must not change.
const (
	KeyBS2B         = "BS2B"
	KeyVoiceRemoval = "VoiceRemoval"

	KeyPhaseReverse = "PhaseReverse"
	KeyReverseRight = "PhaseReverse/ReverseRight"

	KeyEqualizer        = "Equalizer"
	KeyEqualizerNBits   = "Equalizer/nbits"
	KeyEqualizerCount   = "Equalizer/count"
	KeyEqualizerMinFreq = "Equalizer/minFreq"
	KeyEqualizerMaxFreq = "Equalizer/maxFreq"

	KeyEcho         = "Echo"
	KeyEchoDelay    = "Echo/Delay"
	KeyEchoVolume   = "Echo/Volume"
	KeyEchoFeedback = "Echo/Feedback"
	KeyEchoSurround = "Echo/Surround"

	KeyCompressor             = "Compressor"
	KeyCompressorPeakPercent  = "Compressor/PeakPercent"
	KeyCompressorReleaseTime  = "Compressor/ReleaseTime"
	KeyCompressorFastRatio    = "Compressor/FastGainCompressionRatio"
	KeyCompressorOverallRatio = "Compressor/OverallCompressionRatio"
)

// PreampBand is the band index under which the equalizer preamp is stored.
const PreampBand = -1

// EqualizerBandKey returns the key of equalizer band i; PreampBand gives
// "Equalizer/-1".
func EqualizerBandKey(i int) string {
	return KeyEqualizer + "/" + strconv.Itoa(i)
}
