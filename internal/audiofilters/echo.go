package audiofilters

import (
	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp"
)

// Echo is a feedback delay per channel. Volume is the level of the delayed
// signal mixed into the output, feedback the level fed back into the line.
// In surround mode each channel of a pair hears the other's echo.
type Echo struct {
	base
	config conf.EchoConfig
	lines  []*dsp.DelayLine
	taps   []float64
}

func newEcho(store conf.Store) *Echo {
	return &Echo{base: base{name: NameEcho, store: store}}
}

// SetAudioParameters accepts any channel count.
func (f *Echo) SetAudioParameters(channels, sampleRate int) bool {
	if !f.setFormat(channels, sampleRate) {
		f.lines = nil
		return false
	}
	f.prepare()
	return true
}

// SetParams reads the echo group, limited to the panel input ranges.
func (f *Echo) SetParams() bool {
	f.config = conf.LoadEcho(f.store).Bounded()
	f.enabled = f.config.Enabled
	if f.ready() {
		f.prepare()
	}
	return f.enabled
}

// DelaySamples returns the echo delay in frames.
func (f *Echo) DelaySamples() int {
	return max(f.config.Delay*f.sampleRate/1000, 1)
}

func (f *Echo) prepare() {
	n := f.DelaySamples()
	f.lines = make([]*dsp.DelayLine, f.channels)
	for ch := range f.lines {
		f.lines[ch] = dsp.NewDelayLine(n)
	}
	f.taps = make([]float64, f.channels)
}

// ClearBuffers silences the delay lines.
func (f *Echo) ClearBuffers() {
	for _, l := range f.lines {
		l.Reset()
	}
}

// Filter adds the echo in place.
func (f *Echo) Filter(buf *audio.FloatBuffer, _ bool) float64 {
	if f.lines == nil || buf == nil {
		return 0
	}
	volume := float64(f.config.Volume) / 100
	feedback := float64(f.config.Feedback) / 100
	surround := f.config.Surround && f.channels >= 2

	for i := 0; i+f.channels <= len(buf.Data); i += f.channels {
		for ch, l := range f.lines {
			f.taps[ch] = l.Peek()
		}
		for ch, l := range f.lines {
			src := ch
			if surround {
				if partner := ch ^ 1; partner < f.channels {
					src = partner
				}
			}
			x := buf.Data[i+ch]
			tap := f.taps[src]
			buf.Data[i+ch] = x + volume*tap
			l.Push(x + feedback*tap)
		}
	}
	return 0
}
