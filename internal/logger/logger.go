// Package logger configures charmbracelet/log for termserve. Logs always go
// to stderr since stdout carries the msgpack protocol in server mode.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Config holds the options of a component logger.
type Config struct {
	Level     log.Level
	Caller    bool
	Timestamp bool
	Formatter log.Formatter
	Output    io.Writer // defaults to os.Stderr
}

// Setup configures the package-level logger. Debug mode logs everything with
// timestamps, otherwise only warnings and errors are shown.
func Setup(debug bool) {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		log.Debug("Debug mode enabled")
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}

// New creates a prefixed logger that follows the global log level.
func New(prefix string) *log.Logger {
	return NewWithConfig(prefix, Config{
		Level:     log.GetLevel(),
		Timestamp: log.GetLevel() <= log.DebugLevel,
		Formatter: log.TextFormatter,
	})
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(prefix string, cfg Config) *log.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		Prefix:          prefix,
		Level:           cfg.Level,
		ReportCaller:    cfg.Caller,
		ReportTimestamp: cfg.Timestamp,
		Formatter:       cfg.Formatter,
	})
}
