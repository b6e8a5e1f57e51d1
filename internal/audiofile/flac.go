package audiofile

import (
	"encoding/binary"
	"io"

	"github.com/go-audio/audio"
	"github.com/tphakala/flac"
)

type flacDecoder struct {
	file    io.Closer
	decoder *flac.Decoder
	info    Info
	scale   float64
	pending []float64
}

func newFLACDecoder(f io.ReadCloser) (*flacDecoder, error) {
	decoder, err := flac.NewDecoder(f)
	if err != nil {
		return nil, parseError(err, "flac")
	}
	info := Info{
		SampleRate: decoder.SampleRate,
		Channels:   decoder.NChannels,
		BitDepth:   decoder.BitsPerSample,
		Frames:     int64(decoder.TotalSamples),
	}
	scale, err := fullScale(info.BitDepth)
	if err != nil {
		return nil, err
	}
	return &flacDecoder{file: f, decoder: decoder, info: info, scale: scale}, nil
}

func (d *flacDecoder) Info() Info {
	return d.info
}

func (d *flacDecoder) Read(buf *audio.FloatBuffer) (int, error) {
	want := len(buf.Data) - len(buf.Data)%d.info.Channels
	for len(d.pending) < want {
		frame, err := d.decoder.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, parseError(err, "flac")
		}
		d.pending = appendPCM(d.pending, frame, d.info.BitDepth, d.scale)
	}

	n := min(want, len(d.pending))
	if n == 0 {
		buf.Data = buf.Data[:0]
		return 0, io.EOF
	}
	buf.Data = buf.Data[:n]
	copy(buf.Data, d.pending[:n])
	d.pending = append(d.pending[:0], d.pending[n:]...)
	return n, nil
}

func (d *flacDecoder) Close() error {
	return d.file.Close()
}

// appendPCM decodes little-endian interleaved integer PCM.
func appendPCM(dst []float64, pcm []byte, bitDepth int, scale float64) []float64 {
	step := bitDepth / 8
	for i := 0; i+step <= len(pcm); i += step {
		var v int32
		switch bitDepth {
		case 8:
			v = int32(int8(pcm[i]))
		case 16:
			v = int32(int16(binary.LittleEndian.Uint16(pcm[i:])))
		case 24:
			v = int32(uint32(pcm[i])|uint32(pcm[i+1])<<8|uint32(pcm[i+2])<<16) << 8 >> 8
		case 32:
			v = int32(binary.LittleEndian.Uint32(pcm[i:]))
		}
		dst = append(dst, float64(v)/scale)
	}
	return dst
}
