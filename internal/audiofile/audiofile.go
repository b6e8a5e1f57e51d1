// Package audiofile reads WAV and FLAC files into float buffers for the
// filter pipeline and writes processed audio back as WAV.
package audiofile

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/spf13/afero"

	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// GetLogger returns the audiofile module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("audiofile")
}

// Info describes a decoded stream.
type Info struct {
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
	BitDepth   int `json:"bit_depth"`
	// Frames is the total frame count when the container reports it, else 0.
	Frames int64 `json:"frames"`
}

// Decoder yields interleaved samples scaled to [-1, 1).
type Decoder interface {
	Info() Info
	// Read fills buf.Data with whole frames, shrinking it to the samples
	// read. It returns io.EOF once the stream is exhausted.
	Read(buf *audio.FloatBuffer) (int, error)
	Close() error
}

// Open picks a decoder from the file extension.
func Open(fs afero.Fs, path string) (Decoder, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("audiofile").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Context("operation", "open_audio").
			Build()
	}

	var d Decoder
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		d, err = newWAVDecoder(f)
	case ".flac":
		d, err = newFLACDecoder(f)
	default:
		err = errors.Newf("unsupported audio format %q", ext).
			Component("audiofile").
			Category(errors.CategoryValidation).
			FileContext(path).
			Build()
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	info := d.Info()
	GetLogger().Debug("audio file opened",
		logger.String("path", path),
		logger.Int("sample_rate", info.SampleRate),
		logger.Int("channels", info.Channels),
		logger.Int("bit_depth", info.BitDepth))
	return d, nil
}

// NewBuffer returns a buffer holding frames frames of the given format.
func NewBuffer(info Info, frames int) *audio.FloatBuffer {
	return &audio.FloatBuffer{
		Format:         &audio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate},
		Data:           make([]float64, frames*info.Channels),
		SourceBitDepth: info.BitDepth,
	}
}

// fullScale returns the integer magnitude of 1.0 for a bit depth.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
		return float64(int64(1) << (bitDepth - 1)), nil
	default:
		return 0, errors.Newf("unsupported bit depth: %d", bitDepth).
			Component("audiofile").
			Category(errors.CategoryValidation).
			Build()
	}
}

func parseError(err error, format string) error {
	if err == io.EOF {
		return err
	}
	return errors.New(err).
		Component("audiofile").
		Category(errors.CategoryFileParsing).
		Context("format", format).
		Build()
}
