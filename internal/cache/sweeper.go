package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/dartfocus/internal/logging"
)

// Sweeper runs Engine.Sweep on a fixed interval so expired entries do not
// accumulate in durable storage between writes. It is optional: correctness
// does not depend on it because Get treats expired entries as absent.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	logger   zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper over engine. Intervals below one second are
// clamped to one second to keep a misconfigured sweeper from busy-looping.
func NewSweeper(engine *Engine, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval < time.Second {
		interval = time.Second
	}
	return &Sweeper{
		engine:   engine,
		interval: interval,
		logger:   logging.ComponentLogger(logger, "cache-sweeper"),
	}
}

// Start launches the sweep loop. It returns immediately; call Stop to shut
// the loop down. Starting an already-started sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(logging.WithContext(ctx, s.logger))
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.engine.Sweep(ctx); err != nil {
					s.logger.Warn().Err(err).Msg("cache sweep failed")
				}
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.done = nil
}
