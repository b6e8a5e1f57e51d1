package dsp

import "math"

const (
	// maxCompressorGain caps the make-up gain applied to quiet passages (+18 dB).
	maxCompressorGain = 8.0
	// envelopeFloor keeps silence from driving the gain to its cap.
	envelopeFloor = 1e-4
)

// CompressorParams configures a PeakCompressor.
type CompressorParams struct {
	// PeakLimit is the target output peak as a fraction of full scale.
	PeakLimit float64
	// ReleaseTime is the time constant, in seconds, of the peak envelope decay
	// and of gain recovery.
	ReleaseTime float64
	// FastRatio is the fraction of a required gain reduction applied per sample.
	FastRatio float64
	// OverallRatio scales how far the gain moves toward the level that would
	// bring the envelope to PeakLimit; 0 disables compression.
	OverallRatio float64
}

// PeakCompressor is a channel-linked peak follower with smoothed gain and
// a hard ceiling at PeakLimit.
type PeakCompressor struct {
	params   CompressorParams
	release  float64
	envelope float64
	gain     float64
}

// NewPeakCompressor creates a compressor for the given sample rate.
func NewPeakCompressor(p CompressorParams, sampleRate float64) *PeakCompressor {
	c := &PeakCompressor{params: p, gain: 1}
	if p.ReleaseTime > 0 && sampleRate > 0 {
		c.release = math.Exp(-1 / (p.ReleaseTime * sampleRate))
	}
	return c
}

// Gain returns the gain applied to the last frame.
func (c *PeakCompressor) Gain() float64 {
	return c.gain
}

// Reset clears the envelope and gain state.
func (c *PeakCompressor) Reset() {
	c.envelope = 0
	c.gain = 1
}

// ProcessFrame applies the gain to one interleaved frame in place.
func (c *PeakCompressor) ProcessFrame(frame []float64) {
	peak := 0.0
	for _, x := range frame {
		peak = max(peak, math.Abs(x))
	}
	c.envelope = max(peak, c.envelope*c.release)

	target := 1.0
	if c.params.OverallRatio > 0 && c.params.PeakLimit > 0 {
		target = math.Pow(c.params.PeakLimit/max(c.envelope, envelopeFloor), c.params.OverallRatio)
		target = min(target, maxCompressorGain)
	}

	if target < c.gain {
		c.gain += (target - c.gain) * c.params.FastRatio
	} else {
		c.gain = target + (c.gain-target)*c.release
	}

	limit := c.params.PeakLimit
	for i, x := range frame {
		y := x * c.gain
		if limit > 0 {
			y = max(-limit, min(limit, y))
		}
		frame[i] = y
	}
}
