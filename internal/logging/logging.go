// Package logging provides zerolog helpers shared across dartfocus packages:
// construction of the process logger and context-based propagation so that
// request- or invocation-scoped fields follow the call chain.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing human-readable console output to w at the
// given level. An unparseable level falls back to info.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if w == nil {
		w = os.Stderr
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(console).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// WithContext stores logger in ctx for retrieval by FromContext.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger when
// none is present. Callers get a value copy and may attach fields freely.
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}

// ComponentLogger returns a child logger tagged with a component field.
// Every package obtains its logger through this so log lines are filterable
// by subsystem.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
