package audiofilters

import (
	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// kernels is shared by every Equalizer instance, so a rebuild with an
// unchanged layout reuses the designed kernel.
var kernels = dsp.NewKernelCache(dsp.DefaultKernelTTL)

// Equalizer is a linear-phase FIR graphic equalizer. The kernel has 2^nbits
// taps designed from the preamp and band values; its latency is half the
// kernel length.
type Equalizer struct {
	base
	config     conf.EqualizerConfig
	kernel     []float64
	convolvers []*dsp.Convolver
	scratch    []float64
}

func newEqualizer(store conf.Store) *Equalizer {
	return &Equalizer{base: base{name: NameEqualizer, store: store}}
}

// SetAudioParameters accepts any channel count.
func (f *Equalizer) SetAudioParameters(channels, sampleRate int) bool {
	if !f.setFormat(channels, sampleRate) {
		f.convolvers = nil
		return false
	}
	if f.kernel != nil || f.config.Count > 0 {
		return f.prepare()
	}
	return true
}

// SetParams reads the equalizer group.
func (f *Equalizer) SetParams() bool {
	f.config = conf.LoadEqualizer(f.store)
	f.enabled = f.config.Enabled
	if f.ready() {
		f.prepare()
	}
	return f.enabled
}

func (f *Equalizer) prepare() bool {
	freqs := f.config.Frequencies()
	if len(freqs) == 0 {
		f.convolvers = nil
		return false
	}
	preamp := BandDecibels(f.config.Preamp())
	gains := make([]float64, len(freqs))
	for i := range gains {
		g := BandDecibels(f.config.BandGain(i))
		if g <= dsp.MinGainDB || preamp <= dsp.MinGainDB {
			gains[i] = dsp.MinGainDB
			continue
		}
		gains[i] = g + preamp
	}

	kernel, err := kernels.Design(f.config.FilterSize(), float64(f.sampleRate), freqs, gains)
	if err != nil {
		GetLogger().Warn("equalizer kernel design failed",
			logger.Int("nbits", f.config.NBits),
			logger.Int("sample_rate", f.sampleRate),
			logger.Error(err))
		f.convolvers = nil
		return false
	}
	f.kernel = kernel
	f.convolvers = make([]*dsp.Convolver, f.channels)
	for ch := range f.convolvers {
		f.convolvers[ch] = dsp.NewConvolver(kernel)
	}
	return true
}

// Kernel returns the designed FIR kernel.
func (f *Equalizer) Kernel() []float64 {
	return f.kernel
}

// BufferedSamples is half the kernel length.
func (f *Equalizer) BufferedSamples() int {
	if f.convolvers == nil {
		return 0
	}
	return len(f.kernel) / 2
}

// ClearBuffers drops the convolution history.
func (f *Equalizer) ClearBuffers() {
	for _, c := range f.convolvers {
		c.Reset()
	}
}

// Filter convolves every channel in place. With flush the delayed tail is
// appended to buf.
func (f *Equalizer) Filter(buf *audio.FloatBuffer, flush bool) float64 {
	if f.convolvers == nil || buf == nil {
		return 0
	}
	delay := f.BufferedSamples()
	if flush {
		buf.Data = append(buf.Data, make([]float64, delay*f.channels)...)
	}

	frames := f.frames(buf)
	if cap(f.scratch) < frames {
		f.scratch = make([]float64, frames)
	}
	scratch := f.scratch[:frames]
	for ch, c := range f.convolvers {
		for i := range frames {
			scratch[i] = buf.Data[i*f.channels+ch]
		}
		c.Process(scratch, scratch)
		for i := range frames {
			buf.Data[i*f.channels+ch] = scratch[i]
		}
	}
	return float64(delay) / float64(f.sampleRate)
}
