// Package logging builds the application logger from the configured debug
// level, keeping the 0-4 scale the configuration file uses.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Levels on the config scale.
const (
	LevelOff     = 0 // no output
	LevelInfo    = 1 // important info
	LevelLive    = 2 // live info (per-shot progress)
	LevelVerbose = 3 // verbose (native call detail)
	LevelTrace   = 4 // trace (everything the native library emits)
)

// New returns a console logger for the given debug level, writing to w.
func New(level int, w io.Writer) zerolog.Logger {
	if level <= LevelOff {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	logger := zerolog.New(out).With().Timestamp().Logger()
	switch {
	case level >= LevelTrace:
		return logger.Level(zerolog.TraceLevel)
	case level >= LevelVerbose:
		return logger.Level(zerolog.DebugLevel)
	default:
		return logger.Level(zerolog.InfoLevel)
	}
}

// NewStderr returns a console logger for the given debug level on stderr.
func NewStderr(level int) zerolog.Logger {
	return New(level, os.Stderr)
}
