package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/dartfocus/internal/logging"
)

// InitLogger builds the process logger from a LoggingConfig: console output
// on stderr, plus an append-mode log file when one is configured. The caller
// owns the returned close function.
//
// An unparseable level degrades to info rather than failing; a level typo
// should not take the tool down.
func InitLogger(cfg LoggingConfig) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	if cfg.File == "" {
		return logging.New(cfg.Level, os.Stderr), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
		logFile,
	}
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return logger, logFile.Close, nil
}
