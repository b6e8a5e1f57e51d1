package conf

import "math"

// EqualizerConfig is a snapshot of the equalizer keys.
type EqualizerConfig struct {
	Enabled bool `json:"enabled"`
	NBits   int  `json:"nbits"`
	Count   int  `json:"count"`
	MinFreq int  `json:"min_freq"`
	MaxFreq int  `json:"max_freq"`
	// Bands holds the preamp at index 0 followed by Count band values.
	Bands []int `json:"bands"`
}

// LoadEqualizer reads the equalizer group. Absent band entries read as neutral.
func LoadEqualizer(s Store) EqualizerConfig {
	c := EqualizerConfig{
		Enabled: s.GetBool(KeyEqualizer),
		NBits:   s.GetInt(KeyEqualizerNBits),
		Count:   s.GetInt(KeyEqualizerCount),
		MinFreq: s.GetInt(KeyEqualizerMinFreq),
		MaxFreq: s.GetInt(KeyEqualizerMaxFreq),
	}
	c.Bands = make([]int, 0, max(c.Count, 0)+1)
	for i := PreampBand; i < c.Count; i++ {
		key := EqualizerBandKey(i)
		if !s.IsSet(key) {
			c.Bands = append(c.Bands, NeutralBand)
			continue
		}
		c.Bands = append(c.Bands, s.GetInt(key))
	}
	return c
}

// FilterSize is the FIR length, 2^NBits.
func (c EqualizerConfig) FilterSize() int {
	return 1 << c.NBits
}

// Preamp returns the preamp value.
func (c EqualizerConfig) Preamp() int {
	if len(c.Bands) == 0 {
		return NeutralBand
	}
	return c.Bands[0]
}

// BandGain returns the value of band i (0-based, preamp excluded).
func (c EqualizerConfig) BandGain(i int) int {
	if i < 0 || i+1 >= len(c.Bands) {
		return NeutralBand
	}
	return c.Bands[i+1]
}

// Frequencies returns Count band centre frequencies, spaced logarithmically
// from MinFreq to MaxFreq inclusive.
func (c EqualizerConfig) Frequencies() []float64 {
	if c.Count <= 0 {
		return nil
	}
	freqs := make([]float64, c.Count)
	if c.Count == 1 {
		freqs[0] = float64(c.MinFreq)
		return freqs
	}
	lo, hi := float64(c.MinFreq), float64(c.MaxFreq)
	ratio := hi / lo
	for i := range freqs {
		freqs[i] = lo * math.Pow(ratio, float64(i)/float64(c.Count-1))
	}
	return freqs
}

// SaveLayout writes the quality, band count and frequency range, and gives
// any band made reachable by a larger count a neutral value.
func (c EqualizerConfig) SaveLayout(s Store) error {
	for _, kv := range []Default{
		{KeyEqualizerNBits, c.NBits},
		{KeyEqualizerCount, c.Count},
		{KeyEqualizerMinFreq, c.MinFreq},
		{KeyEqualizerMaxFreq, c.MaxFreq},
	} {
		if err := s.Set(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	for i := PreampBand; i < c.Count; i++ {
		if _, err := s.Init(EqualizerBandKey(i), NeutralBand); err != nil {
			return err
		}
	}
	return nil
}

// SaveBands writes the enabled flag, the preamp and every band.
func (c EqualizerConfig) SaveBands(s Store) error {
	if err := s.Set(KeyEqualizer, c.Enabled); err != nil {
		return err
	}
	for i, v := range c.Bands {
		if err := s.Set(EqualizerBandKey(i-1), v); err != nil {
			return err
		}
	}
	return nil
}

// EchoConfig is a snapshot of the echo keys.
type EchoConfig struct {
	Enabled  bool `json:"enabled"`
	Delay    int  `json:"delay_ms"`
	Volume   int  `json:"volume"`
	Feedback int  `json:"feedback"`
	Surround bool `json:"surround"`
}

// LoadEcho reads the echo group.
func LoadEcho(s Store) EchoConfig {
	return EchoConfig{
		Enabled:  s.GetBool(KeyEcho),
		Delay:    s.GetInt(KeyEchoDelay),
		Volume:   s.GetInt(KeyEchoVolume),
		Feedback: s.GetInt(KeyEchoFeedback),
		Surround: s.GetBool(KeyEchoSurround),
	}
}

// Bounded returns c with every numeric field limited to the panel input
// ranges.
func (c EchoConfig) Bounded() EchoConfig {
	c.Delay = EchoDelayRange.Clamp(c.Delay)
	c.Volume = EchoVolumeRange.Clamp(c.Volume)
	c.Feedback = EchoFeedbackRange.Clamp(c.Feedback)
	return c
}

// Save writes every echo key.
func (c EchoConfig) Save(s Store) error {
	return setAll(s, []Default{
		{KeyEcho, c.Enabled},
		{KeyEchoDelay, c.Delay},
		{KeyEchoVolume, c.Volume},
		{KeyEchoFeedback, c.Feedback},
		{KeyEchoSurround, c.Surround},
	})
}

// CompressorConfig is a snapshot of the compressor keys.
type CompressorConfig struct {
	Enabled      bool    `json:"enabled"`
	PeakPercent  int     `json:"peak_percent"`
	ReleaseTime  float64 `json:"release_time"`
	FastRatio    float64 `json:"fast_gain_compression_ratio"`
	OverallRatio float64 `json:"overall_compression_ratio"`
}

// LoadCompressor reads the compressor group.
func LoadCompressor(s Store) CompressorConfig {
	return CompressorConfig{
		Enabled:      s.GetBool(KeyCompressor),
		PeakPercent:  s.GetInt(KeyCompressorPeakPercent),
		ReleaseTime:  s.GetFloat64(KeyCompressorReleaseTime),
		FastRatio:    s.GetFloat64(KeyCompressorFastRatio),
		OverallRatio: s.GetFloat64(KeyCompressorOverallRatio),
	}
}

// Bounded returns c with the peak percent limited to 1..100 and the
// release time and ratios to the slider range, 0.05..1.
func (c CompressorConfig) Bounded() CompressorConfig {
	c.PeakPercent = CompressorPeakRange.Clamp(c.PeakPercent)
	c.ReleaseTime = clampRatio(c.ReleaseTime, DefaultCompressorReleaseTime)
	c.FastRatio = clampRatio(c.FastRatio, DefaultCompressorFastRatio)
	c.OverallRatio = clampRatio(c.OverallRatio, DefaultCompressorOverallRatio)
	return c
}

func clampRatio(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return min(max(v, RatioFromSlider(SliderMin)), RatioFromSlider(SliderMax))
}

// Save writes every compressor key.
func (c CompressorConfig) Save(s Store) error {
	return setAll(s, []Default{
		{KeyCompressor, c.Enabled},
		{KeyCompressorPeakPercent, c.PeakPercent},
		{KeyCompressorReleaseTime, c.ReleaseTime},
		{KeyCompressorFastRatio, c.FastRatio},
		{KeyCompressorOverallRatio, c.OverallRatio},
	})
}

// PhaseReverseConfig is a snapshot of the phase reverse keys.
type PhaseReverseConfig struct {
	Enabled      bool `json:"enabled"`
	ReverseRight bool `json:"reverse_right"`
}

// LoadPhaseReverse reads the phase reverse pair.
func LoadPhaseReverse(s Store) PhaseReverseConfig {
	return PhaseReverseConfig{
		Enabled:      s.GetBool(KeyPhaseReverse),
		ReverseRight: s.GetBool(KeyReverseRight),
	}
}

// Save writes both phase reverse keys.
func (c PhaseReverseConfig) Save(s Store) error {
	return setAll(s, []Default{
		{KeyPhaseReverse, c.Enabled},
		{KeyReverseRight, c.ReverseRight},
	})
}

func setAll(s Store, values []Default) error {
	for _, kv := range values {
		if err := s.Set(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}
