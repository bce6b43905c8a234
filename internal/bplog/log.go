// Package bplog provides structured component logging for bplib, wrapping
// zerolog the way a node-agent wraps its logging library: a global logger
// initialized once, and per-component child loggers carrying a "component"
// field.
package bplog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger, configured by Init. It is safe for concurrent
// use; callers normally don't log on it directly but through Component.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

// Level mirrors zerolog's levels without exposing the dependency to callers
// that only need to set a verbosity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config controls Init.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init (re)configures the global Logger. Safe to call more than once; the
// last call wins. Not safe to call concurrently with logging calls.
func Init(cfg Config) {
	var level zerolog.Level

	switch cfg.Level {
	case LevelDebug:
		level = zerolog.DebugLevel
	case LevelWarn:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
}

// Component returns a child logger tagged with the given component name.
// Used by cmd/bpnode and cmd/bpstore-bench; the pkg/ packages do not log,
// they return their errors to the caller.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
