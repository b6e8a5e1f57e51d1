// Package play implements the play command, which runs a file through the
// enabled filters and plays the result on the default output device.
package play

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tphakala/go-audiofilters/internal/app"
	"github.com/tphakala/go-audiofilters/internal/audiofile"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/pipeline"
	"github.com/tphakala/go-audiofilters/internal/playback"
)

const (
	// DefaultBlockFrames is the number of frames decoded per pipeline call.
	DefaultBlockFrames = 1024
	// DefaultBuffer is the amount of audio queued ahead of the device.
	DefaultBuffer = 250 * time.Millisecond
)

// Options controls playback.
type Options struct {
	BlockFrames int
	Buffer      time.Duration
}

// Command creates the play command.
func Command(settings *app.Settings) *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "play [input.wav|input.flac]",
		Short: "Play an audio file through the enabled filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.BlockFrames, "block", DefaultBlockFrames, "Frames per processing block")
	cmd.Flags().DurationVar(&opts.Buffer, "buffer", DefaultBuffer, "Audio queued ahead of the device")

	return cmd
}

// Run plays input until it ends or ctx is cancelled.
func Run(ctx context.Context, settings *app.Settings, input string, opts Options) error {
	rt, err := app.Bootstrap(settings)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	log := logger.Global().Module("play")

	dec, err := audiofile.Open(afero.NewOsFs(), input)
	if err != nil {
		return err
	}
	defer func() { _ = dec.Close() }()
	info := dec.Info()

	p, err := rt.StartPipeline(info.Channels, info.SampleRate)
	if err != nil {
		if p == nil {
			return err
		}
		log.Warn("some filters failed to start", logger.Error(err))
	}

	player, err := playback.NewPlayer(info.Channels, info.SampleRate, opts.Buffer)
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()
	if err := player.Start(); err != nil {
		return err
	}

	log.Info("playing",
		logger.String("input", input),
		logger.Int("sample_rate", info.SampleRate),
		logger.Int("channels", info.Channels),
		logger.Any("filters", p.Active()))

	frames, err := Stream(ctx, p, dec, player.Queue(), opts.BlockFrames)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("playback stopped", logger.Int64("frames", frames))
			return nil
		}
		return err
	}
	if err := player.Queue().Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("playback finished", logger.Int64("frames", frames))
	return nil
}

// Enqueuer accepts interleaved samples, blocking while it is full.
type Enqueuer interface {
	Enqueue(ctx context.Context, samples []float64) error
}

// Stream decodes dec block by block, runs each block through p and hands
// the output to q. The final block flushes the filters. It returns the
// number of frames queued.
func Stream(ctx context.Context, p *pipeline.Pipeline, dec audiofile.Decoder, q Enqueuer, blockFrames int) (int64, error) {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	info := dec.Info()
	buf := audiofile.NewBuffer(info, blockFrames)
	block := buf.Data
	var queued int64

	for {
		if err := ctx.Err(); err != nil {
			return queued, err
		}

		buf.Data = block
		_, err := dec.Read(buf)
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return queued, err
		}

		p.Process(buf, eof)
		if len(buf.Data) > 0 {
			if err := q.Enqueue(ctx, buf.Data); err != nil {
				return queued, err
			}
			queued += int64(len(buf.Data) / info.Channels)
		}
		if eof {
			return queued, nil
		}
	}
}
