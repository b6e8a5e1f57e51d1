package audiofilters

import (
	"strconv"
	"sync"

	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// Settings groups, used as metric labels and error context.
const (
	groupBS2B         = "bs2b"
	groupVoiceRemoval = "voice_removal"
	groupPhaseReverse = "phase_reverse"
	groupEcho         = "echo"
	groupCompressor   = "compressor"
	groupEqualizer    = "equalizer"
)

// EchoEdit is an echo group edit. Delay is in milliseconds (1..1000),
// Volume and Feedback are percentages (1..100).
type EchoEdit struct {
	Enabled  bool `json:"enabled"`
	Delay    int  `json:"delay_ms"`
	Volume   int  `json:"volume"`
	Feedback int  `json:"feedback"`
	Surround bool `json:"surround"`
}

// CompressorSliders holds compressor control positions, each 1..20.
type CompressorSliders struct {
	Enabled      bool `json:"enabled"`
	PeakPercent  int  `json:"peak_percent"`
	ReleaseTime  int  `json:"release_time"`
	FastRatio    int  `json:"fast_gain_compression_ratio"`
	OverallRatio int  `json:"overall_compression_ratio"`
}

// EqualizerStage holds the equalizer layout fields that are committed only
// by SaveSettings. Quality is an index into QualityLabels.
type EqualizerStage struct {
	Quality int `json:"quality"`
	Count   int `json:"count"`
	MinFreq int `json:"min_freq"`
	MaxFreq int `json:"max_freq"`
}

// PanelState is a snapshot of every group as the panel presents it.
type PanelState struct {
	BS2B                 bool                    `json:"bs2b"`
	VoiceRemoval         bool                    `json:"voice_removal"`
	PhaseReverse         conf.PhaseReverseConfig `json:"phase_reverse"`
	ReverseRightEditable bool                    `json:"reverse_right_editable"`
	Echo                 EchoEdit                `json:"echo"`
	Compressor           CompressorSliders       `json:"compressor"`
	Equalizer            EqualizerStage          `json:"equalizer"`
	EqualizerPending     *EqualizerStage         `json:"equalizer_pending,omitempty"`
}

// Panel applies settings edits. Every group edit validates its input,
// writes every field of the group and then requests a rebuild of the
// group's filter, whether or not the filter is enabled. Invalid input is
// rejected with a validation error and nothing is written.
type Panel struct {
	bundle    *Bundle
	store     conf.Store
	rebuilder Rebuilder

	mu     sync.Mutex
	staged *EqualizerStage
}

// ToggleBS2B enables or disables the crossfeed.
func (p *Panel) ToggleBS2B(enabled bool) error {
	return p.commitToggle(groupBS2B, conf.KeyBS2B, NameBS2B, enabled)
}

// ToggleVoiceRemoval enables or disables voice removal.
func (p *Panel) ToggleVoiceRemoval(enabled bool) error {
	return p.commitToggle(groupVoiceRemoval, conf.KeyVoiceRemoval, NameVoiceRemoval, enabled)
}

func (p *Panel) commitToggle(group, key, filter string, enabled bool) error {
	return p.bundle.edit(func() error {
		if err := p.store.Set(key, enabled); err != nil {
			return err
		}
		return p.committed(group, filter)
	})
}

// SetPhaseReverse writes the phase reverse flag and channel selection.
func (p *Panel) SetPhaseReverse(enabled, reverseRight bool) error {
	cfg := conf.PhaseReverseConfig{Enabled: enabled, ReverseRight: reverseRight}
	return p.bundle.edit(func() error {
		if err := cfg.Save(p.store); err != nil {
			return err
		}
		return p.committed(groupPhaseReverse, NamePhaseReverse)
	})
}

// ReverseRightEditable reports whether the channel selection is
// interactive, which it is only while phase reverse is enabled.
func (p *Panel) ReverseRightEditable() bool {
	return p.store.GetBool(conf.KeyPhaseReverse)
}

// EditEcho writes the echo group.
func (p *Panel) EditEcho(e EchoEdit) error {
	for _, check := range []struct {
		r conf.IntRange
		v int
	}{
		{conf.EchoDelayRange, e.Delay},
		{conf.EchoVolumeRange, e.Volume},
		{conf.EchoFeedbackRange, e.Feedback},
	} {
		if !check.r.Contains(check.v) {
			p.bundle.recordRejected(groupEcho)
			return rangeError(groupEcho, check.r.Key, check.v, check.r.Min, check.r.Max)
		}
	}
	return p.bundle.edit(func() error {
		if err := conf.EchoConfig(e).Save(p.store); err != nil {
			return err
		}
		return p.committed(groupEcho, NameEcho)
	})
}

// EditCompressor maps the slider positions to stored values and writes the
// compressor group.
func (p *Panel) EditCompressor(s CompressorSliders) error {
	for _, check := range []struct {
		key string
		v   int
	}{
		{conf.KeyCompressorPeakPercent, s.PeakPercent},
		{conf.KeyCompressorReleaseTime, s.ReleaseTime},
		{conf.KeyCompressorFastRatio, s.FastRatio},
		{conf.KeyCompressorOverallRatio, s.OverallRatio},
	} {
		if !conf.SliderInRange(check.v) {
			p.bundle.recordRejected(groupCompressor)
			return rangeError(groupCompressor, check.key, check.v, conf.SliderMin, conf.SliderMax)
		}
	}
	cfg := conf.CompressorConfig{
		Enabled:      s.Enabled,
		PeakPercent:  conf.PeakPercentFromSlider(s.PeakPercent),
		ReleaseTime:  conf.RatioFromSlider(s.ReleaseTime),
		FastRatio:    conf.RatioFromSlider(s.FastRatio),
		OverallRatio: conf.RatioFromSlider(s.OverallRatio),
	}
	return p.bundle.edit(func() error {
		if err := cfg.Save(p.store); err != nil {
			return err
		}
		return p.committed(groupCompressor, NameDysonCompressor)
	})
}

// StageEqualizer validates and holds equalizer layout changes until
// SaveSettings. Staging writes nothing and triggers no rebuild.
func (p *Panel) StageEqualizer(s EqualizerStage) error {
	if s.Quality < 0 || s.Quality >= conf.QualitySteps {
		p.bundle.recordRejected(groupEqualizer)
		return rangeError(groupEqualizer, "quality", s.Quality, 0, conf.QualitySteps-1)
	}
	for _, check := range []struct {
		r conf.IntRange
		v int
	}{
		{conf.EqualizerCountRange, s.Count},
		{conf.EqualizerMinFreqRange, s.MinFreq},
		{conf.EqualizerMaxFreqRange, s.MaxFreq},
	} {
		if !check.r.Contains(check.v) {
			p.bundle.recordRejected(groupEqualizer)
			return rangeError(groupEqualizer, check.r.Key, check.v, check.r.Min, check.r.Max)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.staged = &s
	return nil
}

// Staged returns the pending equalizer layout, or nil.
func (p *Panel) Staged() *EqualizerStage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.staged == nil {
		return nil
	}
	s := *p.staged
	return &s
}

// SaveSettings commits the staged equalizer layout. The new layout takes
// effect the next time the Equalizer is built.
func (p *Panel) SaveSettings() error {
	return p.bundle.edit(p.saveStaged)
}

func (p *Panel) saveStaged() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.staged == nil {
		return nil
	}

	cfg := conf.LoadEqualizer(p.store)
	cfg.NBits = conf.NBitsFromQuality(p.staged.Quality)
	cfg.Count = p.staged.Count
	cfg.MinFreq = p.staged.MinFreq
	cfg.MaxFreq = p.staged.MaxFreq
	if err := cfg.SaveLayout(p.store); err != nil {
		return err
	}
	p.staged = nil
	p.bundle.recordWrite(groupEqualizer)
	GetLogger().Info("equalizer layout saved",
		logger.Int("nbits", cfg.NBits),
		logger.Int("count", cfg.Count),
		logger.Int("min_freq", cfg.MinFreq),
		logger.Int("max_freq", cfg.MaxFreq))
	return nil
}

// State returns the current settings with compressor values mapped back to
// slider positions.
func (p *Panel) State() PanelState {
	eq := conf.LoadEqualizer(p.store)
	comp := conf.LoadCompressor(p.store)
	phase := conf.LoadPhaseReverse(p.store)
	return PanelState{
		BS2B:                 p.store.GetBool(conf.KeyBS2B),
		VoiceRemoval:         p.store.GetBool(conf.KeyVoiceRemoval),
		PhaseReverse:         phase,
		ReverseRightEditable: phase.Enabled,
		Echo:                 EchoEdit(conf.LoadEcho(p.store)),
		Compressor: CompressorSliders{
			Enabled:      comp.Enabled,
			PeakPercent:  conf.SliderFromPeakPercent(comp.PeakPercent),
			ReleaseTime:  conf.SliderFromRatio(comp.ReleaseTime),
			FastRatio:    conf.SliderFromRatio(comp.FastRatio),
			OverallRatio: conf.SliderFromRatio(comp.OverallRatio),
		},
		Equalizer: EqualizerStage{
			Quality: conf.QualityFromNBits(eq.NBits),
			Count:   eq.Count,
			MinFreq: eq.MinFreq,
			MaxFreq: eq.MaxFreq,
		},
		EqualizerPending: p.Staged(),
	}
}

// QualityLabels lists the selectable FIR sizes, indexed by quality.
func QualityLabels() []string {
	labels := make([]string, conf.QualitySteps)
	for i := range labels {
		labels[i] = strconv.Itoa(1 << conf.NBitsFromQuality(i))
	}
	return labels
}

// committed records the write and requests the rebuild.
func (p *Panel) committed(group, filter string) error {
	p.bundle.recordWrite(group)
	GetLogger().Debug("settings group saved",
		logger.String("group", group),
		logger.String("filter", filter))
	return p.bundle.requestRebuild(p.rebuilder, filter)
}

func rangeError(group, field string, value, lo, hi int) error {
	return errors.Newf("%s value %d out of range [%d, %d]", field, value, lo, hi).
		Component("audiofilters").
		Category(errors.CategoryValidation).
		Context("group", group).
		Context("field", field).
		Context("value", value).
		Build()
}
