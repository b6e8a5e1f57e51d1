package audiofilters

import (
	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

const groupEqualizerBands = "equalizer_bands"

// EqualizerGUI is the band editor extension. Each edit writes the enabled
// flag and every band, then requests an Equalizer rebuild. Edits are
// serialized with every other settings edit on the same bundle.
type EqualizerGUI struct {
	bundle    *Bundle
	rebuilder Rebuilder
}

func newEqualizerGUI(b *Bundle) *EqualizerGUI {
	return &EqualizerGUI{bundle: b, rebuilder: b.currentRebuilder()}
}

// Name returns the catalog name.
func (g *EqualizerGUI) Name() string {
	return NameEqualizerGUI
}

// Kind returns KindExtension.
func (g *EqualizerGUI) Kind() Kind {
	return KindExtension
}

// Config returns the current equalizer group.
func (g *EqualizerGUI) Config() conf.EqualizerConfig {
	return conf.LoadEqualizer(g.bundle.store)
}

// Bands returns the preamp followed by every band value.
func (g *EqualizerGUI) Bands() []int {
	return g.Config().Bands
}

// Frequencies returns the band centre frequencies.
func (g *EqualizerGUI) Frequencies() []float64 {
	return g.Config().Frequencies()
}

// SetBand sets band index (conf.PreampBand for the preamp) to value 0..100.
func (g *EqualizerGUI) SetBand(index, value int) error {
	return g.bundle.edit(func() error {
		return g.setBand(index, value)
	})
}

func (g *EqualizerGUI) setBand(index, value int) error {
	cfg := g.Config()
	if index < conf.PreampBand || index >= cfg.Count {
		g.bundle.recordRejected(groupEqualizerBands)
		return rangeError(groupEqualizerBands, "band", index, conf.PreampBand, cfg.Count-1)
	}
	if !conf.BandValueRange.Contains(value) {
		g.bundle.recordRejected(groupEqualizerBands)
		return rangeError(groupEqualizerBands, conf.EqualizerBandKey(index), value, conf.BandValueRange.Min, conf.BandValueRange.Max)
	}
	cfg.Bands[index+1] = value
	return g.commit(cfg)
}

// SetPreamp sets the preamp value.
func (g *EqualizerGUI) SetPreamp(value int) error {
	return g.SetBand(conf.PreampBand, value)
}

// SetEnabled toggles the equalizer.
func (g *EqualizerGUI) SetEnabled(enabled bool) error {
	return g.bundle.edit(func() error {
		cfg := g.Config()
		cfg.Enabled = enabled
		return g.commit(cfg)
	})
}

// Reset sets the preamp and every band to the neutral value.
func (g *EqualizerGUI) Reset() error {
	return g.bundle.edit(func() error {
		cfg := g.Config()
		for i := range cfg.Bands {
			cfg.Bands[i] = conf.NeutralBand
		}
		return g.commit(cfg)
	})
}

func (g *EqualizerGUI) commit(cfg conf.EqualizerConfig) error {
	if err := cfg.SaveBands(g.bundle.store); err != nil {
		return err
	}
	g.bundle.recordWrite(groupEqualizerBands)
	GetLogger().Debug("equalizer bands saved",
		logger.Bool("enabled", cfg.Enabled),
		logger.Int("preamp", cfg.Preamp()))
	return g.bundle.requestRebuild(g.rebuilder, NameEqualizer)
}
