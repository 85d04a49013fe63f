package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/dartfocus/internal/logging"
)

// ErrNoCapacity is returned when an insertion cannot free a slot in its
// category. With policy validation in place this only happens when a policy
// table bypassed Validate, but the engine refuses to loop rather than trust
// its configuration.
var ErrNoCapacity = errors.New("cache category has no usable capacity")

// Engine composes a Store with a PolicyTable into the get/put/evict/stats
// semantics the tool handlers consume. It is safe for concurrent use: reads
// go straight to the store, while the check-capacity/evict/insert sequence
// is serialized per category so a burst of writers can never push a category
// past its capacity bound.
type Engine struct {
	store    Store
	policies PolicyTable
	recorder StatsRecorder
	logger   zerolog.Logger
	now      func() time.Time

	locks    map[Category]*sync.Mutex
	counters map[Category]*counterSet

	// uncategorized accounts get-misses for keys whose prefix matches no
	// known category, so they are not silently dropped from totals.
	uncategorized counterSet
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source. Tests use this to cross TTL
// boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecorder attaches a StatsRecorder that mirrors engine events.
func WithRecorder(r StatsRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the engine's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logging.ComponentLogger(logger, "cache") }
}

// NewEngine creates an Engine over store with the given policy table. The
// table is validated here; a misconfigured table is a startup failure, not
// something to discover on the first put.
func NewEngine(store Store, policies PolicyTable, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("cache store cannot be nil")
	}
	if err := policies.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		store:    store,
		policies: policies,
		logger:   zerolog.Nop(),
		now:      time.Now,
		locks:    make(map[Category]*sync.Mutex, len(policies)),
		counters: make(map[Category]*counterSet, len(policies)),
	}
	for category := range policies {
		e.locks[category] = &sync.Mutex{}
		e.counters[category] = &counterSet{}
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

func (e *Engine) countersFor(category Category) *counterSet {
	if cs, ok := e.counters[category]; ok {
		return cs
	}
	return &e.uncategorized
}

func (e *Engine) recordHit(category Category) {
	e.countersFor(category).hits.Add(1)
	if e.recorder != nil {
		e.recorder.RecordHit(category)
	}
}

func (e *Engine) recordMiss(category Category) {
	e.countersFor(category).misses.Add(1)
	if e.recorder != nil {
		e.recorder.RecordMiss(category)
	}
}

func (e *Engine) recordEviction(category Category) {
	e.countersFor(category).evictions.Add(1)
	if e.recorder != nil {
		e.recorder.RecordEviction(category)
	}
}

// Get returns the cached payload for key. The second return value reports a
// hit; a miss (absent or expired) is a normal outcome, not an error. Errors
// are storage failures only, and callers should treat them as "proceed
// without cache".
func (e *Engine) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	category := categoryOfKey(key)

	entry, err := e.store.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.recordMiss(category)
			return nil, false, nil
		}
		return nil, false, &StorageError{Op: "get", Err: err}
	}

	now := e.now()
	if entry.ExpiredAt(now) {
		// Logically absent. Removal is best effort; the sweeper picks up
		// anything this misses.
		if delErr := e.store.Delete(key); delErr != nil {
			logger := logging.FromContext(ctx)
			logger.Warn().
				Str("component", "cache").
				Str("key", key).
				Err(delErr).
				Msg("failed to delete expired cache entry")
		}
		e.recordMiss(entry.Category)
		return nil, false, nil
	}

	if touchErr := e.store.Touch(key, now); touchErr != nil && !errors.Is(touchErr, ErrNotFound) {
		return nil, false, &StorageError{Op: "touch", Err: touchErr}
	}

	e.recordHit(entry.Category)
	return entry.Payload, true, nil
}

// Put stores payload under key in the given category, evicting the
// least-recently-accessed entries of that category first if the insertion
// would exceed its capacity. Overwriting an existing key never evicts.
func (e *Engine) Put(ctx context.Context, key string, payload json.RawMessage, category Category) error {
	policy, err := e.policies.Lookup(category)
	if err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}
	if policy.MaxEntries < 1 {
		return fmt.Errorf("%w: category %q", ErrNoCapacity, category)
	}

	lock := e.locks[category]
	lock.Lock()
	defer lock.Unlock()

	// An overwrite of an existing key is not a net-new entry and skips all
	// capacity work. Expired-but-unswept entries still occupy their slot.
	_, getErr := e.store.Get(key)
	isOverwrite := getErr == nil
	if getErr != nil && !errors.Is(getErr, ErrNotFound) {
		return &StorageError{Op: "put", Err: getErr}
	}

	if !isOverwrite {
		if err := e.evictForInsert(ctx, category, policy); err != nil {
			return err
		}
	}

	now := e.now()
	entry := NewEntry(key, category, payload, now, policy.TTL)
	if err := e.store.Put(entry); err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	return nil
}

// evictForInsert frees exactly one slot in category when it is at or over
// capacity. Candidates are taken oldest-access-first, ties broken by oldest
// creation (the store's list order).
func (e *Engine) evictForInsert(ctx context.Context, category Category, policy Policy) error {
	count, err := e.store.CountByCategory(category)
	if err != nil {
		return &StorageError{Op: "count", Err: err}
	}
	if count < policy.MaxEntries {
		return nil
	}

	victims, err := e.store.ListByCategory(category)
	if err != nil {
		return &StorageError{Op: "list", Err: err}
	}

	toEvict := count - policy.MaxEntries + 1
	if toEvict > len(victims) {
		return fmt.Errorf("%w: category %q", ErrNoCapacity, category)
	}

	logger := logging.FromContext(ctx)
	for _, victim := range victims[:toEvict] {
		if err := e.store.Delete(victim.Key); err != nil {
			return &StorageError{Op: "evict", Err: err}
		}
		e.recordEviction(category)
		logger.Debug().
			Str("component", "cache").
			Str("category", category.String()).
			Str("key", victim.Key).
			Time("last_accessed_at", victim.LastAccessedAt).
			Msg("evicted cache entry for capacity")
	}

	return nil
}

// Invalidate removes the entry for key. Invalidating an absent key is a
// no-op. Handlers use this when they know their own cached value is stale.
func (e *Engine) Invalidate(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := e.store.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
		return &StorageError{Op: "invalidate", Err: err}
	}
	return nil
}

// Clear removes every entry in category and returns how many were removed.
func (e *Engine) Clear(_ context.Context, category Category) (int, error) {
	if _, err := e.policies.Lookup(category); err != nil {
		return 0, err
	}

	lock := e.locks[category]
	lock.Lock()
	defer lock.Unlock()

	removed, err := e.store.ClearCategory(category)
	if err != nil {
		return 0, &StorageError{Op: "clear", Err: err}
	}
	return removed, nil
}

// ClearAll removes every entry in every category.
func (e *Engine) ClearAll(ctx context.Context) (int, error) {
	// Take the category locks in stable order so concurrent puts cannot
	// interleave with the bulk removal.
	for _, category := range Categories() {
		if lock, ok := e.locks[category]; ok {
			lock.Lock()
			defer lock.Unlock()
		}
	}

	removed, err := e.store.ClearAll()
	if err != nil {
		return 0, &StorageError{Op: "clear_all", Err: err}
	}

	logger := logging.FromContext(ctx)
	logger.Info().
		Str("component", "cache").
		Int("removed", removed).
		Msg("cleared cache")
	return removed, nil
}

// Sweep physically removes expired entries and returns how many were
// deleted. Get already treats expired entries as absent; sweeping only
// reclaims storage.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	removed, err := e.store.DeleteExpired(e.now())
	if err != nil {
		return 0, &StorageError{Op: "sweep", Err: err}
	}

	if removed > 0 {
		logger := logging.FromContext(ctx)
		logger.Debug().
			Str("component", "cache").
			Int("removed", removed).
			Msg("swept expired cache entries")
	}
	return removed, nil
}

// Stats returns a snapshot of hit/miss/eviction counters and live entry
// counts. It never mutates cache state; a store that fails to count simply
// reports zero entries for that category.
func (e *Engine) Stats() Stats {
	snapshot := Stats{Categories: make(map[Category]CategoryStats, len(e.counters))}

	for category, cs := range e.counters {
		entries, err := e.store.CountByCategory(category)
		if err != nil {
			e.logger.Warn().
				Str("category", category.String()).
				Err(err).
				Msg("failed to count cache entries")
			entries = 0
		}

		stats := CategoryStats{
			Hits:      cs.hits.Load(),
			Misses:    cs.misses.Load(),
			Evictions: cs.evictions.Load(),
			Entries:   entries,
		}
		stats.HitRate = hitRate(stats.Hits, stats.Misses)
		snapshot.Categories[category] = stats

		snapshot.Hits += stats.Hits
		snapshot.Misses += stats.Misses
		snapshot.Evictions += stats.Evictions
		snapshot.Entries += stats.Entries
	}

	snapshot.Hits += e.uncategorized.hits.Load()
	snapshot.Misses += e.uncategorized.misses.Load()
	snapshot.HitRate = hitRate(snapshot.Hits, snapshot.Misses)

	return snapshot
}
