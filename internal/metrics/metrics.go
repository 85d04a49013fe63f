// Package metrics exposes cache activity as Prometheus counters.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rshade/dartfocus/internal/cache"
)

const namespace = "dartfocus"

var (
	registerOnce sync.Once

	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache hits by category.",
	}, []string{"category"})

	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache misses by category.",
	}, []string{"category"})

	cacheEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Cache evictions by category.",
	}, []string{"category"})
)

// Register installs the cache collectors on the default registry. Safe to
// call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(cacheHits, cacheMisses, cacheEvictions)
	})
}

// Recorder mirrors cache engine counters into Prometheus. It implements
// cache.StatsRecorder.
type Recorder struct{}

// NewRecorder registers the collectors and returns a recorder ready to be
// handed to cache.NewEngine.
func NewRecorder() *Recorder {
	Register()
	return &Recorder{}
}

func (*Recorder) RecordHit(c cache.Category)      { cacheHits.WithLabelValues(string(c)).Inc() }
func (*Recorder) RecordMiss(c cache.Category)     { cacheMisses.WithLabelValues(string(c)).Inc() }
func (*Recorder) RecordEviction(c cache.Category) { cacheEvictions.WithLabelValues(string(c)).Inc() }
