package audiofilters

import (
	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp"
)

// DysonCompressor is a peak-following dynamic range compressor with a fast
// gain reduction path and a slower overall ratio.
type DysonCompressor struct {
	base
	config     conf.CompressorConfig
	compressor *dsp.PeakCompressor
}

func newDysonCompressor(store conf.Store) *DysonCompressor {
	return &DysonCompressor{base: base{name: NameDysonCompressor, store: store}}
}

// SetAudioParameters accepts any channel count.
func (f *DysonCompressor) SetAudioParameters(channels, sampleRate int) bool {
	if !f.setFormat(channels, sampleRate) {
		f.compressor = nil
		return false
	}
	f.prepare()
	return true
}

// SetParams reads the compressor group.
func (f *DysonCompressor) SetParams() bool {
	f.config = conf.LoadCompressor(f.store).Bounded()
	f.enabled = f.config.Enabled
	if f.ready() {
		f.prepare()
	}
	return f.enabled
}

// Params returns the gain computer parameters derived from the settings.
func (f *DysonCompressor) Params() dsp.CompressorParams {
	return dsp.CompressorParams{
		PeakLimit:    float64(f.config.PeakPercent) / 100,
		ReleaseTime:  f.config.ReleaseTime,
		FastRatio:    f.config.FastRatio,
		OverallRatio: f.config.OverallRatio,
	}
}

func (f *DysonCompressor) prepare() {
	f.compressor = dsp.NewPeakCompressor(f.Params(), float64(f.sampleRate))
}

// ClearBuffers resets the envelope and gain.
func (f *DysonCompressor) ClearBuffers() {
	if f.compressor != nil {
		f.compressor.Reset()
	}
}

// Filter compresses buf in place, frame by frame.
func (f *DysonCompressor) Filter(buf *audio.FloatBuffer, _ bool) float64 {
	if f.compressor == nil || buf == nil {
		return 0
	}
	for i := 0; i+f.channels <= len(buf.Data); i += f.channels {
		f.compressor.ProcessFrame(buf.Data[i : i+f.channels])
	}
	return 0
}
