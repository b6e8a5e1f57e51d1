package audiofilters

import (
	"math"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp"
)

// AudioFilter is a sample-processing filter hosted in a pipeline slot.
//
// The host calls SetAudioParameters with the stream format, then SetParams,
// and installs the instance only when SetParams reports it enabled. An
// instance is never re-configured in place; edits produce a new instance.
type AudioFilter interface {
	Name() string
	// SetParams reads the filter's settings from the store and reports
	// whether the filter is enabled.
	SetParams() bool
	// SetAudioParameters applies the stream format and reports whether the
	// filter can process it.
	SetAudioParameters(channels, sampleRate int) bool
	// BufferedSamples is the number of frames held back by the filter.
	BufferedSamples() int
	ClearBuffers()
	// Filter processes interleaved samples in place and returns the delay
	// it adds, in seconds. When flush is set the held-back frames are
	// appended to buf.
	Filter(buf *audio.FloatBuffer, flush bool) float64
}

// Extension is a catalog component that does not process samples.
type Extension interface {
	Name() string
	Kind() Kind
}

// base holds what every filter engine shares.
type base struct {
	name       string
	store      conf.Store
	channels   int
	sampleRate int
	enabled    bool
}

func (b *base) Name() string {
	return b.name
}

func (b *base) setFormat(channels, sampleRate int) bool {
	if channels < 1 || sampleRate < 1 {
		b.channels, b.sampleRate = 0, 0
		return false
	}
	b.channels, b.sampleRate = channels, sampleRate
	return true
}

func (b *base) ready() bool {
	return b.channels > 0 && b.sampleRate > 0
}

func (b *base) BufferedSamples() int {
	return 0
}

// frames returns the number of whole frames in buf.
func (b *base) frames(buf *audio.FloatBuffer) int {
	if buf == nil || b.channels == 0 {
		return 0
	}
	return len(buf.Data) / b.channels
}

// Band values map to decibels around the neutral value of 50: above it
// linearly up to +12 dB at 100, below it as 20·log10(v/50), so 0 mutes.
const maxBandBoostDB = 12.0

// BandDecibels converts a stored band value to a gain in dB.
func BandDecibels(v int) float64 {
	switch {
	case v <= 0:
		return dsp.MinGainDB
	case v >= conf.NeutralBand:
		return float64(v-conf.NeutralBand) / conf.NeutralBand * maxBandBoostDB
	default:
		return max(20*math.Log10(float64(v)/conf.NeutralBand), dsp.MinGainDB)
	}
}
