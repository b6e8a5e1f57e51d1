// Package serve implements the serve command: the settings HTTP API with a
// live pipeline behind it.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-audiofilters/internal/api"
	"github.com/tphakala/go-audiofilters/internal/app"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// Options holds the serve command flags.
type Options struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

// Command creates the serve command.
func Command(settings *app.Settings) *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the settings API and metrics",
		Long: "Start an HTTP server exposing the filter catalog, the settings panel, the equalizer band editor, " +
			"the pipeline slot states and Prometheus metrics. Every settings edit rebuilds the live pipeline.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, opts)
		},
	}

	setupFlags(cmd, settings, &opts)
	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *app.Settings, opts *Options) {
	cmd.Flags().StringVar(&opts.Host, "host", viper.GetString("host"), "Address to bind to (empty for all interfaces)")
	cmd.Flags().StringVarP(&opts.Port, "port", "p", api.DefaultPort, "Port to listen on")
	cmd.Flags().StringSliceVar(&opts.AllowedOrigins, "allow-origin", []string{"*"}, "CORS allowed origins")
	cmd.Flags().IntVar(&settings.Channels, "channels", app.DefaultChannels, "Channel count of the live pipeline")
	cmd.Flags().IntVar(&settings.SampleRate, "rate", app.DefaultSampleRate, "Sample rate of the live pipeline")
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, settings *app.Settings, opts Options) error {
	rt, err := app.Bootstrap(settings)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	log := logger.Global().Module("serve")

	channels, rate := rt.Format()
	p, err := rt.StartPipeline(channels, rate)
	if err != nil {
		if p == nil {
			return err
		}
		log.Warn("some filters failed to start", logger.Error(err))
	}

	ctrl, err := api.NewController(rt.Bundle, rt.SettingsPanel(),
		api.WithPipeline(p),
		api.WithMetricsHandler(rt.Metrics.Handler()))
	if err != nil {
		return err
	}

	cfg := api.DefaultConfig()
	cfg.Host = opts.Host
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	cfg.AllowedOrigins = opts.AllowedOrigins
	cfg.Debug = settings.Debug

	srv, err := api.New(cfg, ctrl, api.WithVersion(app.Version))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
