// Package biquad provides second-order IIR sections based on Robert
// Bristow-Johnson's audio EQ cookbook.
package biquad

import (
	"math"

	"github.com/tphakala/go-audiofilters/internal/errors"
)

// Kind identifies the filter response.
type Kind int

const (
	Undefined Kind = iota
	LowPass
	HighPass
	LowShelf
	HighShelf
	Peaking
)

// Filter is a cascade of identical biquad sections processing one channel.
type Filter struct {
	kind Kind

	// normalized coefficients (divided by a0)
	b0, b1, b2, a1, a2 float64

	// per-pass state
	in1, in2, out1, out2 []float64
}

// New creates a filter from raw cookbook coefficients.
func New(kind Kind, a0, a1, a2, b0, b1, b2 float64, passes int) *Filter {
	return &Filter{
		kind: kind,
		b0:   b0 / a0,
		b1:   b1 / a0,
		b2:   b2 / a0,
		a1:   a1 / a0,
		a2:   a2 / a0,
		in1:  make([]float64, passes),
		in2:  make([]float64, passes),
		out1: make([]float64, passes),
		out2: make([]float64, passes),
	}
}

// Kind returns the filter response.
func (f *Filter) Kind() Kind {
	return f.kind
}

// IsZero returns true when f is not initialized.
func (f *Filter) IsZero() bool {
	return f == nil || f.kind == Undefined
}

// Process filters a single sample.
func (f *Filter) Process(x float64) float64 {
	for p := range f.in1 {
		y := f.b0*x + f.b1*f.in1[p] + f.b2*f.in2[p] - f.a1*f.out1[p] - f.a2*f.out2[p]
		f.in2[p], f.in1[p] = f.in1[p], x
		f.out2[p], f.out1[p] = f.out1[p], y
		x = y
	}
	return x
}

// ApplyBatch filters samples in place.
func (f *Filter) ApplyBatch(samples []float64) {
	for i, x := range samples {
		samples[i] = f.Process(x)
	}
}

// Reset clears the filter state.
func (f *Filter) Reset() {
	clear(f.in1)
	clear(f.in2)
	clear(f.out1)
	clear(f.out2)
}

// Magnitude returns the linear magnitude response of the full cascade at
// frequency (Hz) for the given sample rate.
func (f *Filter) Magnitude(frequency, sampleRate float64) float64 {
	w := 2 * math.Pi * frequency / sampleRate
	z1 := complex(math.Cos(-w), math.Sin(-w))
	z2 := z1 * z1
	num := complex(f.b0, 0) + complex(f.b1, 0)*z1 + complex(f.b2, 0)*z2
	den := 1 + complex(f.a1, 0)*z1 + complex(f.a2, 0)*z2
	h := num / den
	return math.Pow(math.Hypot(real(h), imag(h)), float64(len(f.in1)))
}

func validate(sampleRate, frequency, q float64, passes int) error {
	switch {
	case passes < 1:
		return errors.Newf("passes must be 1 or greater, got %d", passes).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	case q <= 0:
		return errors.Newf("q must be greater than 0, got %g", q).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	case frequency <= 0 || frequency >= sampleRate/2:
		return errors.Newf("frequency %g Hz outside (0, %g)", frequency, sampleRate/2).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// NewLowPass returns a low-pass filter. Each pass adds 12 dB/octave.
func NewLowPass(sampleRate, frequency, q float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, q, passes); err != nil {
		return nil, err
	}
	w0 := 2 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cos := math.Cos(w0)

	return New(LowPass,
		1+alpha, -2*cos, 1-alpha,
		(1-cos)/2, 1-cos, (1-cos)/2,
		passes,
	), nil
}

// NewHighPass returns a high-pass filter. Each pass adds 12 dB/octave.
func NewHighPass(sampleRate, frequency, q float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, q, passes); err != nil {
		return nil, err
	}
	w0 := 2 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cos := math.Cos(w0)

	return New(HighPass,
		1+alpha, -2*cos, 1-alpha,
		(1+cos)/2, -(1 + cos), (1+cos)/2,
		passes,
	), nil
}

// NewLowShelf returns a low-shelf filter with gain in dB.
func NewLowShelf(sampleRate, frequency, q, gain float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, q, passes); err != nil {
		return nil, err
	}
	w0 := 2 * math.Pi * frequency / sampleRate
	a := math.Pow(10, gain/40)
	beta := math.Sqrt(a) / q
	cos, sin := math.Cos(w0), math.Sin(w0)

	return New(LowShelf,
		(a+1)+(a-1)*cos+beta*sin,
		-2*((a-1)+(a+1)*cos),
		(a+1)+(a-1)*cos-beta*sin,
		a*((a+1)-(a-1)*cos+beta*sin),
		2*a*((a-1)-(a+1)*cos),
		a*((a+1)-(a-1)*cos-beta*sin),
		passes,
	), nil
}

// NewHighShelf returns a high-shelf filter with gain in dB.
func NewHighShelf(sampleRate, frequency, q, gain float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, q, passes); err != nil {
		return nil, err
	}
	w0 := 2 * math.Pi * frequency / sampleRate
	a := math.Pow(10, gain/40)
	beta := math.Sqrt(a) / q
	cos, sin := math.Cos(w0), math.Sin(w0)

	return New(HighShelf,
		(a+1)-(a-1)*cos+beta*sin,
		2*((a-1)-(a+1)*cos),
		(a+1)-(a-1)*cos-beta*sin,
		a*((a+1)+(a-1)*cos+beta*sin),
		-2*a*((a-1)+(a+1)*cos),
		a*((a+1)+(a-1)*cos-beta*sin),
		passes,
	), nil
}

// NewPeaking returns a peaking filter; width is the bandwidth in octaves.
func NewPeaking(sampleRate, frequency, width, gain float64, passes int) (*Filter, error) {
	if err := validate(sampleRate, frequency, width, passes); err != nil {
		return nil, err
	}
	w0 := 2 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) * math.Sinh(math.Ln2/2*width*w0/math.Sin(w0))
	a := math.Pow(10, gain/40)
	cos := math.Cos(w0)

	return New(Peaking,
		1+alpha/a, -2*cos, 1-alpha/a,
		1+alpha*a, -2*cos, 1-alpha*a,
		passes,
	), nil
}
