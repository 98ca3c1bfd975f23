// Package logging configures the charmbracelet/log loggers used by jsoncomma
// and carries them through contexts.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide default logger.
var defaultLogger atomic.Pointer[log.Logger]

// New creates a stderr logger at level ("debug", "info", "warn" or "error";
// anything else means info).
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing to w without timestamps. The server
// command passes stderr so log lines never interleave with the handshake on
// stdout.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.New(w)
	logger.SetLevel(parseLevel(level))
	return logger
}

// NewServer creates a timestamped, prefixed logger for the long-running
// server process.
func NewServer(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "jsoncomma",
		Level:           parseLevel(level),
	})
}

func parseLevel(level string) log.Level {
	level = strings.ToLower(level)
	if level == "warning" {
		level = "warn"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil || parsed == log.FatalLevel {
		return log.InfoLevel
	}
	return parsed
}

// Default returns the process-wide logger, creating an info-level stderr
// logger on first use.
func Default() *log.Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	defaultLogger.CompareAndSwap(nil, New("info"))
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultLogger.Store(logger)
}

// SetLevel changes the level of the process-wide logger.
func SetLevel(level string) {
	Default().SetLevel(parseLevel(level))
}
