package cli

import (
	"fmt"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/dart"
	"github.com/rshade/dartfocus/internal/metrics"
	"github.com/rshade/dartfocus/internal/tools"
)

// buildEngine opens the configured store and wires the cache engine with
// the Prometheus recorder. Returns nil when caching is disabled.
func buildEngine(app *appState) (*cache.Engine, error) {
	if !app.cfg.Cache.Enabled {
		app.logger.Warn().Msg("caching is disabled, every call fetches fresh")
		return nil, nil
	}

	store, err := app.cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	policies, err := app.cfg.PolicyTable()
	if err != nil {
		return nil, err
	}

	engine, err := cache.NewEngine(store, policies,
		cache.WithRecorder(metrics.NewRecorder()),
		cache.WithLogger(app.logger),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return engine, nil
}

// buildService assembles the full tool service: cache engine, OpenDART
// client, handlers. The caller closes the returned engine; it is nil when
// caching is disabled.
func buildService(app *appState) (*tools.Service, *cache.Engine, error) {
	apiKey, err := app.cfg.RequireAPIKey()
	if err != nil {
		return nil, nil, err
	}

	engine, err := buildEngine(app)
	if err != nil {
		return nil, nil, err
	}

	client := dart.NewClient(app.cfg.DART.BaseURL, apiKey, app.cfg.DART.Timeout.Std(), app.logger)
	return tools.NewService(engine, client, app.logger), engine, nil
}
