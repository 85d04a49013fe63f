package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/rshade/dartfocus/internal/cache"
)

func TestRecorder_CountsByCategory(t *testing.T) {
	rec := NewRecorder()

	before := testutil.ToFloat64(cacheHits.WithLabelValues(string(cache.CategoryNews)))

	rec.RecordHit(cache.CategoryNews)
	rec.RecordHit(cache.CategoryNews)
	rec.RecordMiss(cache.CategoryNews)
	rec.RecordEviction(cache.CategoryNews)

	assert.Equal(t, before+2, testutil.ToFloat64(cacheHits.WithLabelValues(string(cache.CategoryNews))))
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheMisses.WithLabelValues(string(cache.CategoryNews))))
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheEvictions.WithLabelValues(string(cache.CategoryNews))))
}

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
