// Package conf provides the settings store, defaults, group snapshots and
// the startup normalizer for the audio filter bundle.
package conf

import "github.com/tphakala/go-audiofilters/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
// The logger is fetched from the global logger each time so it follows a
// CentralLogger installed after package init.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
