// Package process implements the process command, which runs the enabled
// filters over a WAV or FLAC file and writes the result as WAV.
package process

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/go-audiofilters/internal/app"
	"github.com/tphakala/go-audiofilters/internal/audiofile"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/pipeline"
)

// DefaultBlockFrames is the number of frames handed to the pipeline per call.
const DefaultBlockFrames = 4096

// Options controls a processing run.
type Options struct {
	Output      string
	BlockFrames int
	// KeepLatency leaves the filter delay at the start of the output instead
	// of trimming it.
	KeepLatency bool
}

// Result summarizes a processing run.
type Result struct {
	Info          audiofile.Info
	FramesRead    int64
	FramesWritten int64
	LatencyFrames int
	Elapsed       time.Duration
}

// Command creates the process command.
func Command(settings *app.Settings) *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "process [input.wav|input.flac]",
		Short: "Run the enabled filters over an audio file",
		Long:  "Read a WAV or FLAC file, run it through every enabled filter with the stored settings and write the result as WAV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.Bootstrap(settings)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			res, err := Run(cmd.Context(), rt, afero.NewOsFs(), args[0], opts)
			if err != nil {
				return err
			}
			cmd.Printf("%s: %d frames at %d Hz, %d channels, latency %d frames, %s\n",
				opts.Output, res.FramesWritten, res.Info.SampleRate, res.Info.Channels,
				res.LatencyFrames, res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", viper.GetString("output"), "Output WAV file")
	cmd.Flags().IntVar(&opts.BlockFrames, "block", DefaultBlockFrames, "Frames per processing block")
	cmd.Flags().BoolVar(&opts.KeepLatency, "keep-latency", false, "Do not trim the filter delay from the output")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// Run processes input into opts.Output on fs using the runtime's bundle.
func Run(ctx context.Context, rt *app.Runtime, fs afero.Fs, input string, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.BlockFrames <= 0 {
		opts.BlockFrames = DefaultBlockFrames
	}
	log := logger.Global().Module("process")
	start := time.Now()

	dec, err := audiofile.Open(fs, input)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dec.Close() }()
	info := dec.Info()

	p, err := rt.StartPipeline(info.Channels, info.SampleRate)
	if err != nil {
		if p == nil {
			return nil, err
		}
		log.Warn("some filters failed to start", logger.Error(err))
	}
	log.Info("processing",
		logger.String("input", input),
		logger.String("output", opts.Output),
		logger.Any("filters", p.Active()))

	out, err := fs.Create(opts.Output)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "create_output").
			FileContext(opts.Output).
			Build()
	}
	defer func() { _ = out.Close() }()

	w, err := audiofile.NewWAVWriter(out, info)
	if err != nil {
		return nil, err
	}

	res, err := run(ctx, p, dec, w, info, opts)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "finalize_output").
			FileContext(opts.Output).
			Build()
	}
	res.Elapsed = time.Since(start)

	log.Info("processing complete",
		logger.Int64("frames_read", res.FramesRead),
		logger.Int64("frames_written", res.FramesWritten),
		logger.Int("latency_frames", res.LatencyFrames),
		logger.Duration("elapsed", res.Elapsed))
	return res, nil
}

type sink interface {
	Write(buf *audio.FloatBuffer) error
}

// run feeds every block through p. The last call flushes the filters; the
// leading latency is dropped unless opts.KeepLatency is set, so the output
// lines up with the input.
func run(ctx context.Context, p *pipeline.Pipeline, dec audiofile.Decoder, w sink, info audiofile.Info, opts Options) (*Result, error) {
	res := &Result{Info: info}
	buf := audiofile.NewBuffer(info, opts.BlockFrames)
	block := buf.Data
	skip := -1

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf.Data = block
		n, err := dec.Read(buf)
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return nil, err
		}
		res.FramesRead += int64(n / info.Channels)

		latency := p.Process(buf, eof)
		if skip < 0 {
			res.LatencyFrames = int(math.Round(latency * float64(info.SampleRate)))
			skip = 0
			if !opts.KeepLatency {
				skip = res.LatencyFrames * info.Channels
			}
		}

		if skip > 0 {
			k := min(skip, len(buf.Data))
			buf.Data = buf.Data[k:]
			skip -= k
		}
		if len(buf.Data) > 0 {
			if err := w.Write(buf); err != nil {
				return nil, err
			}
			res.FramesWritten += int64(len(buf.Data) / info.Channels)
		}

		if eof {
			return res, nil
		}
	}
}
