package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echolog "github.com/labstack/gommon/log"

	mw "github.com/tphakala/go-audiofilters/internal/api/middleware"
	"github.com/tphakala/go-audiofilters/internal/dsp"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// Server is the HTTP server for the settings API.
type Server struct {
	echo       *echo.Echo
	config     *Config
	controller *Controller
	log        logger.Logger
	startTime  time.Time
	version    string
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithVersion sets the version reported by /health.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// New creates a server that serves controller's routes.
func New(config *Config, controller *Controller, opts ...ServerOption) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if controller == nil {
		return nil, errors.Newf("server requires a controller").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}

	s := &Server{
		config:     config,
		controller: controller,
		log:        GetLogger(),
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug
	s.echo.Logger = logger.NewEchoAdapter(s.log.Module("echo"))

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()
	s.setupRoutes()

	s.log.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.Bool("debug", config.Debug))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{LogLevel: echolog.ERROR}))
	s.echo.Use(mw.NewRequestLogger(s.log))
	s.echo.Use(mw.NewWriteRateLimiter(s.config.WriteRate, s.config.WriteBurst))

	security := mw.DefaultSecurityConfig()
	if len(s.config.AllowedOrigins) > 0 {
		security.AllowedOrigins = s.config.AllowedOrigins
	}
	s.echo.Use(mw.NewCORS(security))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(security))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.controller.RegisterRoutes(s.echo)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// healthCheck handles the server health check endpoint.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.version,
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
		"cpu":            dsp.DetectCPU(),
	})
}

// Start serves HTTP requests and blocks until Shutdown is called.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.log.Info("starting HTTP server", logger.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.New(err).
			Component("api").
			Category(errors.CategorySystem).
			Context("address", addr).
			Build()
	}
	return nil
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("error during server shutdown", logger.Error(err))
		return errors.New(err).
			Component("api").
			Category(errors.CategorySystem).
			Context("operation", "shutdown").
			Build()
	}
	s.log.Info("server shutdown complete")
	return nil
}
