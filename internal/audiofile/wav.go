package audiofile

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audiofilters/internal/errors"
)

type wavDecoder struct {
	file    io.Closer
	decoder *wav.Decoder
	info    Info
	scale   float64
	ints    *audio.IntBuffer
}

func newWAVDecoder(f io.ReadSeekCloser) (*wavDecoder, error) {
	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.Newf("input is not a valid WAV audio file").
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	info := Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	scale, err := fullScale(info.BitDepth)
	if err != nil {
		return nil, err
	}
	if info.Channels < 1 {
		return nil, errors.Newf("invalid channel count %d", info.Channels).
			Component("audiofile").
			Category(errors.CategoryFileParsing).
			Build()
	}

	return &wavDecoder{
		file:    f,
		decoder: decoder,
		info:    info,
		scale:   scale,
		ints:    &audio.IntBuffer{Format: &audio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate}},
	}, nil
}

func (d *wavDecoder) Info() Info {
	return d.info
}

func (d *wavDecoder) Read(buf *audio.FloatBuffer) (int, error) {
	want := len(buf.Data) - len(buf.Data)%d.info.Channels
	if cap(d.ints.Data) < want {
		d.ints.Data = make([]int, want)
	}
	d.ints.Data = d.ints.Data[:want]

	n, err := d.decoder.PCMBuffer(d.ints)
	if err != nil {
		return 0, parseError(err, "wav")
	}
	if n == 0 {
		buf.Data = buf.Data[:0]
		return 0, io.EOF
	}
	n -= n % d.info.Channels
	buf.Data = buf.Data[:n]
	for i, v := range d.ints.Data[:n] {
		buf.Data[i] = float64(v) / d.scale
	}
	return n, nil
}

func (d *wavDecoder) Close() error {
	return d.file.Close()
}

// WAVWriter encodes float buffers as integer PCM WAV.
type WAVWriter struct {
	encoder *wav.Encoder
	scale   float64
	ints    *audio.IntBuffer
}

// NewWAVWriter writes a WAV stream to w. Close finalizes the header.
func NewWAVWriter(w io.WriteSeeker, info Info) (*WAVWriter, error) {
	scale, err := fullScale(info.BitDepth)
	if err != nil {
		return nil, err
	}
	return &WAVWriter{
		encoder: wav.NewEncoder(w, info.SampleRate, info.BitDepth, info.Channels, 1),
		scale:   scale,
		ints:    &audio.IntBuffer{Format: &audio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate}, SourceBitDepth: info.BitDepth},
	}, nil
}

// Write converts buf to integers, clipping at full scale, and encodes it.
func (w *WAVWriter) Write(buf *audio.FloatBuffer) error {
	if cap(w.ints.Data) < len(buf.Data) {
		w.ints.Data = make([]int, len(buf.Data))
	}
	w.ints.Data = w.ints.Data[:len(buf.Data)]
	hi := w.scale - 1
	for i, v := range buf.Data {
		w.ints.Data[i] = int(max(-w.scale, min(hi, v*w.scale)))
	}
	if err := w.encoder.Write(w.ints); err != nil {
		return errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			Context("operation", "write_wav").
			Build()
	}
	return nil
}

// Close flushes the encoder.
func (w *WAVWriter) Close() error {
	return w.encoder.Close()
}
