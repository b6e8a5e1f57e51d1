package audiofilters

import (
	"math"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp/biquad"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

const (
	bs2bCutoff = 700.0
	bs2bFeedDB = 4.5
	bs2bQ      = math.Sqrt2 / 2
)

// BS2B is a headphone crossfeed: each channel receives a low-passed,
// attenuated copy of the other, and the direct path gets a matching high
// shelf so a centred signal keeps a flat response. Stereo only.
type BS2B struct {
	base
	crossGain float64
	lowpass   [2]*biquad.Filter
	shelf     [2]*biquad.Filter
}

func newBS2B(store conf.Store) *BS2B {
	return &BS2B{base: base{name: NameBS2B, store: store}}
}

// SetAudioParameters accepts only two-channel streams.
func (f *BS2B) SetAudioParameters(channels, sampleRate int) bool {
	if !f.setFormat(channels, sampleRate) || channels != 2 {
		f.lowpass, f.shelf = [2]*biquad.Filter{}, [2]*biquad.Filter{}
		return false
	}
	return f.prepare()
}

// SetParams reads the BS2B toggle.
func (f *BS2B) SetParams() bool {
	f.enabled = f.store.GetBool(conf.KeyBS2B)
	if f.ready() {
		f.prepare()
	}
	return f.enabled
}

func (f *BS2B) prepare() bool {
	f.crossGain = math.Pow(10, -bs2bFeedDB/20)
	shelfDB := 20 * math.Log10(1+f.crossGain)
	rate := float64(f.sampleRate)
	for ch := range f.lowpass {
		lp, err := biquad.NewLowPass(rate, bs2bCutoff, bs2bQ, 1)
		if err != nil {
			GetLogger().Warn("bs2b lowpass rejected", logger.Int("sample_rate", f.sampleRate), logger.Error(err))
			f.lowpass = [2]*biquad.Filter{}
			return false
		}
		hs, err := biquad.NewHighShelf(rate, bs2bCutoff, bs2bQ, shelfDB, 1)
		if err != nil {
			GetLogger().Warn("bs2b shelf rejected", logger.Int("sample_rate", f.sampleRate), logger.Error(err))
			f.lowpass = [2]*biquad.Filter{}
			return false
		}
		f.lowpass[ch], f.shelf[ch] = lp, hs
	}
	return true
}

// ClearBuffers resets the filter state.
func (f *BS2B) ClearBuffers() {
	for ch := range f.lowpass {
		if f.lowpass[ch] != nil {
			f.lowpass[ch].Reset()
			f.shelf[ch].Reset()
		}
	}
}

// Filter applies the crossfeed in place.
func (f *BS2B) Filter(buf *audio.FloatBuffer, _ bool) float64 {
	if f.channels != 2 || f.lowpass[0] == nil || buf == nil {
		return 0
	}
	norm := 1 / (1 + f.crossGain)
	data := buf.Data
	for i := 0; i+1 < len(data); i += 2 {
		l, r := data[i], data[i+1]
		toRight := f.lowpass[0].Process(l) * f.crossGain
		toLeft := f.lowpass[1].Process(r) * f.crossGain
		data[i] = (f.shelf[0].Process(l) + toLeft) * norm
		data[i+1] = (f.shelf[1].Process(r) + toRight) * norm
	}
	return 0
}
