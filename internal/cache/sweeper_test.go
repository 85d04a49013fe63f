package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dartfocus/internal/cache"
)

// TestSweeper_RemovesExpiredEntries uses the wall clock with a short TTL; the
// sweeper loop itself runs on real time.
func TestSweeper_RemovesExpiredEntries(t *testing.T) {
	policies := cache.PolicyTable{
		cache.CategoryCompanyInfo: {TTL: 50 * time.Millisecond, MaxEntries: 10},
	}
	store := cache.NewMemoryStore()
	engine, err := cache.NewEngine(store, policies)
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	key, err := cache.GenerateKey(cache.KeyParams{
		Category: cache.CategoryCompanyInfo,
		Args:     map[string]string{"corp_code": "00126380"},
	})
	require.NoError(t, err)
	require.NoError(t, engine.Put(ctx, key, json.RawMessage(`{}`), cache.CategoryCompanyInfo))

	sweeper := cache.NewSweeper(engine, time.Second, zerolog.Nop())
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// The entry expires well before the first tick; the sweep should
	// physically remove it.
	assert.Eventually(t, func() bool {
		count, countErr := store.CountByCategory(cache.CategoryCompanyInfo)
		return countErr == nil && count == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	engine, err := cache.NewEngine(cache.NewMemoryStore(), cache.DefaultPolicyTable())
	require.NoError(t, err)
	defer engine.Close()

	sweeper := cache.NewSweeper(engine, time.Second, zerolog.Nop())
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop() // second stop must not panic or block
}
