// Package app holds the settings shared by every command and the runtime
// they bootstrap: logging, error reporting, the settings store, metrics and
// the filter bundle.
package app

import (
	"github.com/spf13/afero"

	"github.com/tphakala/go-audiofilters/internal/audiofilters"
	"github.com/tphakala/go-audiofilters/internal/conf"
	"github.com/tphakala/go-audiofilters/internal/dsp"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/observability"
	"github.com/tphakala/go-audiofilters/internal/pipeline"
	"github.com/tphakala/go-audiofilters/internal/telemetry"
)

// Version is set at build time.
var Version = "dev"

// Settings are the command line and environment options.
type Settings struct {
	ConfigPath   string // settings file; empty selects the default location
	Debug        bool
	LogFile      string // JSON log file; empty disables file output
	SentryDSN    string
	EnvOverrides bool // let AUDIOFILTERS_* variables override stored values
	DryRun       bool // keep every settings write in memory
	Channels     int
	SampleRate   int
}

// DefaultChannels and DefaultSampleRate describe the stream format used
// when none is given.
const (
	DefaultChannels   = 2
	DefaultSampleRate = 48000
)

// Runtime is everything a command needs once settings are parsed.
type Runtime struct {
	Settings *Settings
	Store    *conf.ViperStore
	Metrics  *observability.Metrics
	Bundle   *audiofilters.Bundle

	log      *logger.CentralLogger
	flush    func()
	pipeline *pipeline.Pipeline
}

// GetLogger returns the app package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("app")
}

// SetupLogging installs the global logger described by settings.
func SetupLogging(settings *Settings) (*logger.CentralLogger, error) {
	level := logger.DefaultLogLevel
	if settings.Debug {
		level = string(logger.LogLevelDebug)
	}
	cfg := &logger.LoggingConfig{DefaultLevel: level}
	if settings.LogFile != "" {
		cfg.FileOutput = &logger.FileOutput{Enabled: true, Path: settings.LogFile, Level: level}
	}
	cl, err := logger.NewCentralLogger(cfg)
	if err != nil {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "setup_logging").
			Build()
	}
	logger.SetGlobal(cl)
	return cl, nil
}

// Bootstrap sets up logging and error reporting, opens and normalizes the
// settings store and creates the filter bundle.
func Bootstrap(settings *Settings) (*Runtime, error) {
	return BootstrapFs(settings, afero.NewOsFs())
}

// BootstrapFs is Bootstrap over fs. With DryRun the store writes go to a
// copy-on-write layer over fs and nothing reaches it.
func BootstrapFs(settings *Settings, fs afero.Fs) (*Runtime, error) {
	cl, err := SetupLogging(settings)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Settings: settings, log: cl, flush: func() {}}

	flush, err := telemetry.Init(settings.SentryDSN, Version)
	if err != nil {
		GetLogger().Warn("error reporting disabled", logger.Error(err))
	} else {
		rt.flush = flush
	}

	path := settings.ConfigPath
	if path == "" {
		if path, err = conf.DefaultConfigFile(fs); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}

	storeFs := fs
	if settings.DryRun {
		storeFs = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(fs), afero.NewMemMapFs())
	}
	opts := []conf.StoreOption{conf.WithFs(storeFs)}
	if settings.EnvOverrides {
		opts = append(opts, conf.WithEnvOverrides())
	}
	if rt.Store, err = conf.NewViperStore(path, opts...); err != nil {
		_ = rt.Close()
		return nil, err
	}

	if rt.Metrics, err = observability.NewMetrics(); err != nil {
		_ = rt.Close()
		return nil, err
	}

	if rt.Bundle, err = audiofilters.New(rt.Store, audiofilters.WithMetrics(rt.Metrics.Filters)); err != nil {
		_ = rt.Close()
		return nil, err
	}

	cpu := dsp.DetectCPU()
	GetLogger().Debug("runtime ready",
		logger.String("config", path),
		logger.String("cpu", cpu.Brand),
		logger.Any("simd", cpu.SIMD),
		logger.Bool("dry_run", settings.DryRun),
		logger.Bool("env_overrides", settings.EnvOverrides))
	return rt, nil
}

// Format returns the configured stream format, falling back to defaults.
func (rt *Runtime) Format() (channels, sampleRate int) {
	channels, sampleRate = rt.Settings.Channels, rt.Settings.SampleRate
	if channels <= 0 {
		channels = DefaultChannels
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return channels, sampleRate
}

// StartPipeline builds a pipeline for the given format, attaches it as the
// bundle's rebuilder and builds every enabled filter. A failed filter does
// not prevent the others from starting; the joined error is returned with
// the pipeline.
func (rt *Runtime) StartPipeline(channels, sampleRate int) (*pipeline.Pipeline, error) {
	p, err := pipeline.New(rt.Bundle, channels, sampleRate, pipeline.WithMetrics(rt.Metrics.Pipeline))
	if err != nil {
		return nil, err
	}
	rt.Bundle.SetRebuilder(p)
	rt.pipeline = p
	return p, p.Start()
}

// SettingsPanel returns a settings panel that rebuilds the running pipeline,
// or only persists when none was started.
func (rt *Runtime) SettingsPanel() *audiofilters.Panel {
	if rt.pipeline == nil {
		return rt.Bundle.SettingsPanel(nil)
	}
	return rt.Bundle.SettingsPanel(rt.pipeline)
}

// Close stops the pipeline, flushes error reports and closes the log file.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.pipeline != nil {
		errs = append(errs, rt.pipeline.Close())
	}
	rt.flush()
	if rt.log != nil {
		errs = append(errs, rt.log.Flush(), rt.log.Close())
	}
	return errors.Join(errs...)
}
