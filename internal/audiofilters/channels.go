package audiofilters

import (
	"github.com/go-audio/audio"

	"github.com/tphakala/go-audiofilters/internal/conf"
)

// VoiceRemoval cancels content panned to the centre by replacing the left
// channel with L-R and the right with R-L. Needs at least two channels;
// further channels pass through.
type VoiceRemoval struct {
	base
}

func newVoiceRemoval(store conf.Store) *VoiceRemoval {
	return &VoiceRemoval{base: base{name: NameVoiceRemoval, store: store}}
}

// SetAudioParameters accepts streams with two or more channels.
func (f *VoiceRemoval) SetAudioParameters(channels, sampleRate int) bool {
	return f.setFormat(channels, sampleRate) && channels >= 2
}

// SetParams reads the VoiceRemoval toggle.
func (f *VoiceRemoval) SetParams() bool {
	f.enabled = f.store.GetBool(conf.KeyVoiceRemoval)
	return f.enabled
}

// ClearBuffers is a no-op; the filter is stateless.
func (f *VoiceRemoval) ClearBuffers() {}

// Filter applies the cancellation in place.
func (f *VoiceRemoval) Filter(buf *audio.FloatBuffer, _ bool) float64 {
	if f.channels < 2 || buf == nil {
		return 0
	}
	for i := 0; i+f.channels <= len(buf.Data); i += f.channels {
		l, r := buf.Data[i], buf.Data[i+1]
		buf.Data[i] = l - r
		buf.Data[i+1] = r - l
	}
	return 0
}

// PhaseReverse inverts the polarity of the left channel, or of the right
// channel when PhaseReverse/ReverseRight is set.
type PhaseReverse struct {
	base
	right bool
}

func newPhaseReverse(store conf.Store) *PhaseReverse {
	return &PhaseReverse{base: base{name: NamePhaseReverse, store: store}}
}

// SetAudioParameters accepts streams with two or more channels.
func (f *PhaseReverse) SetAudioParameters(channels, sampleRate int) bool {
	return f.setFormat(channels, sampleRate) && channels >= 2
}

// SetParams reads the phase reverse pair.
func (f *PhaseReverse) SetParams() bool {
	cfg := conf.LoadPhaseReverse(f.store)
	f.enabled, f.right = cfg.Enabled, cfg.ReverseRight
	return f.enabled
}

// ReverseRight reports which channel is inverted.
func (f *PhaseReverse) ReverseRight() bool {
	return f.right
}

// ClearBuffers is a no-op; the filter is stateless.
func (f *PhaseReverse) ClearBuffers() {}

// Filter inverts the selected channel in place.
func (f *PhaseReverse) Filter(buf *audio.FloatBuffer, _ bool) float64 {
	if f.channels < 2 || buf == nil {
		return 0
	}
	ch := 0
	if f.right {
		ch = 1
	}
	for i := ch; i < len(buf.Data); i += f.channels {
		buf.Data[i] = -buf.Data[i]
	}
	return 0
}
