package dsp

import (
	"math"

	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audiofilters/internal/errors"
)

const (
	// Below this kernel length direct SIMD convolution beats FFT convolution.
	minKernelForFFT = 400

	minFFTBlockSize = 512

	// MinGainDB is the floor used for muted bands.
	MinGainDB = -120.0
)

// DesignLinearPhaseFIR builds a linear phase FIR of length size (a power of
// two) whose magnitude response passes through gainsDB at freqs. Between
// band centres the gain is interpolated linearly on a log frequency axis;
// below the first and above the last centre it stays flat. The kernel is
// symmetric about size/2, which is its group delay in samples.
func DesignLinearPhaseFIR(size int, sampleRate float64, freqs, gainsDB []float64) ([]float64, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, errors.Newf("FIR size %d is not a power of two", size).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}
	if len(freqs) == 0 || len(freqs) != len(gainsDB) {
		return nil, errors.Newf("FIR design needs matching frequencies and gains, got %d and %d", len(freqs), len(gainsDB)).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}
	if sampleRate <= 0 {
		return nil, errors.Newf("invalid sample rate %g", sampleRate).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}

	bins := size/2 + 1
	response := make([]complex128, bins)
	for k := range response {
		freq := float64(k) * sampleRate / float64(size)
		response[k] = complex(dbToLinear(interpolateGain(freq, freqs, gainsDB)), 0)
	}

	fft := fourier.NewFFT(size)
	impulse := fft.Sequence(nil, response)
	f64.Scale(impulse, impulse, 1/float64(size))

	// Rotate the zero-phase impulse to the centre and window it.
	kernel := make([]float64, size)
	half := size / 2
	for i := range kernel {
		kernel[i] = impulse[(i+half)%size] * blackman(i, size)
	}
	return kernel, nil
}

func interpolateGain(freq float64, freqs, gainsDB []float64) float64 {
	gain := func(i int) float64 { return max(gainsDB[i], MinGainDB) }

	last := len(freqs) - 1
	switch {
	case freq <= freqs[0]:
		return gain(0)
	case freq >= freqs[last]:
		return gain(last)
	}
	for i := 1; i <= last; i++ {
		if freq > freqs[i] {
			continue
		}
		lo, hi := math.Log(freqs[i-1]), math.Log(freqs[i])
		t := (math.Log(freq) - lo) / (hi - lo)
		return gain(i-1) + t*(gain(i)-gain(i-1))
	}
	return gain(last)
}

func dbToLinear(db float64) float64 {
	if db <= MinGainDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// blackman is the periodic Blackman window, symmetric about n/2.
func blackman(i, n int) float64 {
	x := 2 * math.Pi * float64(i) / float64(n)
	return 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
}

// Convolver streams a signal through an FIR kernel, keeping the tail of the
// previous block so consecutive calls behave like one long convolution.
// Long kernels use overlap-save FFT convolution, short ones direct SIMD
// convolution.
type Convolver struct {
	reversed []float64
	history  []float64
	signal   []float64

	fft       *fourier.FFT
	fftSize   int
	kernelFFT []complex128
	block     []float64
	blockFFT  []complex128
	product   []complex128
	result    []float64
}

// NewConvolver prepares kernel for streaming convolution.
func NewConvolver(kernel []float64) *Convolver {
	n := len(kernel)
	if n == 0 {
		return nil
	}

	c := &Convolver{
		reversed: make([]float64, n),
		history:  make([]float64, n-1),
	}
	for i := range n {
		c.reversed[i] = kernel[n-1-i]
	}

	if n >= minKernelForFFT {
		fftSize := minFFTBlockSize
		for fftSize < 2*n {
			fftSize *= 2
		}
		c.fft = fourier.NewFFT(fftSize)
		c.fftSize = fftSize
		// Circular convolution with the kernel itself matches the direct
		// path, which correlates with the reversed kernel.
		padded := make([]float64, fftSize)
		copy(padded, kernel)
		c.kernelFFT = c.fft.Coefficients(nil, padded)
		c.block = make([]float64, fftSize)
		c.blockFFT = make([]complex128, fftSize/2+1)
		c.product = make([]complex128, fftSize/2+1)
		c.result = make([]float64, fftSize)
	}
	return c
}

// KernelLen returns the kernel length.
func (c *Convolver) KernelLen() int {
	return len(c.reversed)
}

// Reset clears the carried-over history.
func (c *Convolver) Reset() {
	clear(c.history)
}

// Process convolves src into dst (len(dst) >= len(src)); dst may alias src.
func (c *Convolver) Process(dst, src []float64) {
	n := len(src)
	if n == 0 {
		return
	}
	c.signal = append(append(c.signal[:0], c.history...), src...)

	if c.fft == nil {
		f64.ConvolveValid(dst[:n], c.signal, c.reversed)
	} else {
		c.convolveFFT(dst[:n])
	}

	copy(c.history, c.signal[len(c.signal)-len(c.history):])
}

// convolveFFT runs overlap-save over c.signal.
func (c *Convolver) convolveFFT(dst []float64) {
	kernelLen := len(c.reversed)
	overlap := kernelLen - 1
	blockSize := c.fftSize - overlap
	outputLen := len(dst)
	scale := 1 / float64(c.fftSize)

	for out := 0; out < outputLen; {
		clear(c.block)
		copy(c.block, c.signal[out:min(out+c.fftSize, len(c.signal))])

		c.blockFFT = c.fft.Coefficients(c.blockFFT, c.block)
		c128.Mul(c.product, c.blockFFT, c.kernelFFT)
		c.result = c.fft.Sequence(c.result, c.product)
		f64.Scale(c.result, c.result, scale)

		valid := min(blockSize, outputLen-out)
		copy(dst[out:out+valid], c.result[overlap:overlap+valid])
		out += valid
	}
}
