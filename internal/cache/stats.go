package cache

import "sync/atomic"

// CategoryStats holds the observability counters for one category.
type CategoryStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Entries   int     `json:"entries"`
	HitRate   float64 `json:"hit_rate"`
}

// Stats is a read-only snapshot of cache accounting, global and per category.
type Stats struct {
	Categories map[Category]CategoryStats `json:"categories"`
	Hits       int64                      `json:"hits"`
	Misses     int64                      `json:"misses"`
	Evictions  int64                      `json:"evictions"`
	Entries    int                        `json:"entries"`
	HitRate    float64                    `json:"hit_rate"`
}

// StatsRecorder receives cache events as they happen, in addition to the
// engine's own counters. Implementations must be safe for concurrent use.
// The Prometheus bridge in internal/metrics is the production implementation.
type StatsRecorder interface {
	RecordHit(category Category)
	RecordMiss(category Category)
	RecordEviction(category Category)
}

// counterSet is the per-category counter block. All fields are atomics so
// Get can account hits without taking the category write lock.
type counterSet struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
