// Package api serves the settings panel, the filter catalog and the
// pipeline state over HTTP.
package api

import (
	"fmt"
	"time"

	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultPort            = "8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "64K"
	DefaultWriteRate       = 20.0
	DefaultWriteBurst      = 40
)

// Config holds the HTTP server configuration.
type Config struct {
	Host string // Host to bind to (empty for all interfaces)
	Port string

	AllowedOrigins []string // CORS allowed origins

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BodyLimit string // Maximum request body size (e.g., "64K", "1M")

	WriteRate  float64 // Settings writes per second per client, 0 disables
	WriteBurst int

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            DefaultPort,
		AllowedOrigins:  []string{"*"},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
		WriteRate:       DefaultWriteRate,
		WriteBurst:      DefaultWriteBurst,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var problem string
	switch {
	case c.Port == "":
		problem = "port is required"
	case c.ReadTimeout <= 0:
		problem = "read timeout must be positive"
	case c.WriteTimeout <= 0:
		problem = "write timeout must be positive"
	case c.ShutdownTimeout <= 0:
		problem = "shutdown timeout must be positive"
	case c.WriteRate > 0 && c.WriteBurst <= 0:
		problem = "write burst must be positive when writes are rate limited"
	default:
		return nil
	}
	return errors.Newf("invalid server configuration: %s", problem).
		Component("api").
		Category(errors.CategoryConfiguration).
		Build()
}

// Address returns the full address string for the server to listen on.
func (c *Config) Address() string {
	if c.Host == "" {
		return ":" + c.Port
	}
	return c.Host + ":" + c.Port
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Server Config: address=%s, debug=%v", c.Address(), c.Debug)
}
