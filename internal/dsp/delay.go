package dsp

// DelayLine is a fixed-length sample delay backed by a circular buffer.
type DelayLine struct {
	buf []float64
	pos int
}

// NewDelayLine returns a delay of n samples; n < 1 is treated as 1.
func NewDelayLine(n int) *DelayLine {
	return &DelayLine{buf: make([]float64, max(n, 1))}
}

// Len returns the delay in samples.
func (d *DelayLine) Len() int {
	return len(d.buf)
}

// Peek returns the sample written Len() steps ago.
func (d *DelayLine) Peek() float64 {
	return d.buf[d.pos]
}

// Push stores x and advances the line, returning the sample it replaced.
func (d *DelayLine) Push(x float64) float64 {
	out := d.buf[d.pos]
	d.buf[d.pos] = x
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
	return out
}

// Reset clears the line.
func (d *DelayLine) Reset() {
	clear(d.buf)
	d.pos = 0
}
