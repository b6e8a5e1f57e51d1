// Package dsp holds the signal processing building blocks used by the
// filter engines: FIR design and convolution, delay lines and a peak
// following compressor.
package dsp
