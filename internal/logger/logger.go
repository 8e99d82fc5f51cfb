// Package logger provides leveled logging for the annotate CLI.
// Output is JSON lines written by zerolog. Warnings are always written;
// debug and info messages only when verbose mode is enabled via --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  = zerolog.SyncWriter(os.Stderr)
	current = build(output, verbose)
)

func build(w io.Writer, v bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if v {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	current = build(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = zerolog.SyncWriter(w)
	current = build(output, verbose)
}

// Logger returns the current logger for structured events.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Debug logs a debug message if verbose mode is enabled.
func Debug(format string, args ...any) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}

// Section marks the start of a phase if verbose mode is enabled.
func Section(format string, args ...any) {
	l := Logger()
	l.Info().Str("section", fmt.Sprintf(format, args...)).Msg("")
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning. Warnings are written regardless of verbose mode.
func Warn(format string, args ...any) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}
