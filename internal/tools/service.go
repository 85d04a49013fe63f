// Package tools implements the disclosure tool handlers: each operation
// answers from the cache when it can and falls back to the OpenDART
// upstream when it cannot. Cache faults degrade to fresh fetches rather
// than failing the request.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/dart"
	"github.com/rshade/dartfocus/internal/logging"
)

// Upstream is the slice of the OpenDART client the handlers need.
// *dart.Client satisfies it.
type Upstream interface {
	CompanyProfile(ctx context.Context, corpCode string) (*dart.CompanyProfile, error)
	FinancialStatements(ctx context.Context, corpCode, year, reportCode, fsDiv string) ([]dart.Account, error)
	Disclosures(ctx context.Context, corpCode, from, to string, pageCount int) (*dart.DisclosureList, error)
}

// Service wires the cache engine in front of the upstream client. A nil
// engine disables caching; every call then fetches fresh.
type Service struct {
	engine   *cache.Engine
	upstream Upstream
	group    singleflight.Group
	logger   zerolog.Logger
	entropy  *ulid.MonotonicEntropy
}

// NewService builds a tool service over an engine and upstream client.
func NewService(engine *cache.Engine, upstream Upstream, logger zerolog.Logger) *Service {
	return &Service{
		engine:   engine,
		upstream: upstream,
		logger:   logging.ComponentLogger(logger, "tools"),
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// invocationID tags one tool call across its log lines.
func (s *Service) invocationID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// cachedFetch answers from the cache when the key is live, otherwise runs
// fetch, stores the result, and returns it. Concurrent misses on the same
// key share one upstream call. Cache read and write failures are logged
// and the fresh result is returned regardless.
func (s *Service) cachedFetch(ctx context.Context, category cache.Category, args map[string]string, fetch func(context.Context) (any, error)) (json.RawMessage, error) {
	invocation := s.invocationID()

	if s.engine == nil {
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", category, err)
		}
		return encoded, nil
	}

	key, err := cache.GenerateKey(cache.KeyParams{Category: category, Args: args})
	if err != nil {
		return nil, fmt.Errorf("derive cache key: %w", err)
	}

	payload, ok, err := s.engine.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("invocation", invocation).
			Str("key", key).
			Msg("cache read failed, fetching fresh")
	} else if ok {
		s.logger.Debug().
			Str("invocation", invocation).
			Str("key", key).
			Msg("cache hit")
		return payload, nil
	}

	fresh, err, _ := s.group.Do(key, func() (any, error) {
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", category, err)
		}

		if err := s.engine.Put(ctx, key, encoded, category); err != nil {
			s.logger.Warn().Err(err).
				Str("invocation", invocation).
				Str("key", key).
				Msg("cache write failed, serving uncached result")
		}
		return json.RawMessage(encoded), nil
	})
	if err != nil {
		return nil, err
	}
	return fresh.(json.RawMessage), nil
}

// Engine exposes the underlying cache engine for stats and admin surfaces.
// It is nil when caching is disabled.
func (s *Service) Engine() *cache.Engine {
	return s.engine
}
