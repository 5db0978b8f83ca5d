package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// Init initializes the structured zerolog logger
func Init(env string) {
	var w io.Writer

	if env == "development" || env == "dev" || env == "local" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stderr
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "adwatch").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return zlog.With().Str("component", component).Logger()
}

// WithWorldID returns a logger with a world_id field
func WithWorldID(worldID string) zerolog.Logger {
	return zlog.With().Str("world_id", worldID).Logger()
}
