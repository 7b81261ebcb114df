// Package logging configures the process-wide console logger.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Init installs a timestamped stderr logger as the default for the
// charmbracelet/log package functions. debug lowers the level to DEBUG.
func Init(debug bool, prefix string) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          prefix,
	})
	log.SetDefault(logger)
	return logger
}
