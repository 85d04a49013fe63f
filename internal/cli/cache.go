package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/tui"
)

// errCachingDisabled is returned by cache admin commands when the config
// has caching turned off.
var errCachingDisabled = fmt.Errorf("caching is disabled in the configuration")

func newCacheCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the disclosure cache",
	}

	cmd.AddCommand(
		newCacheStatsCmd(app),
		newCacheClearCmd(app),
		newCacheSweepCmd(app),
	)
	return cmd
}

// withEngine runs fn against the cache engine and closes it afterwards.
func withEngine(app *appState, fn func(*cache.Engine) error) error {
	engine, err := buildEngine(app)
	if err != nil {
		return err
	}
	if engine == nil {
		return errCachingDisabled
	}
	defer func() { _ = engine.Close() }()

	return fn(engine)
}

func newCacheStatsCmd(app *appState) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-category hit, miss, and eviction counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(app, func(engine *cache.Engine) error {
				if watch {
					return tui.RunStatsDashboard(engine, interval)
				}

				payload, err := json.Marshal(engine.Stats())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "live dashboard instead of a one-shot snapshot")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "dashboard refresh interval")
	return cmd
}

func newCacheClearCmd(app *appState) *cobra.Command {
	var (
		category string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all == (category != "") {
				return fmt.Errorf("specify exactly one of --all or --category")
			}

			return withEngine(app, func(engine *cache.Engine) error {
				var (
					removed int
					err     error
				)
				if all {
					removed, err = engine.ClearAll(cmd.Context())
				} else {
					c := cache.Category(category)
					if !c.Valid() {
						return fmt.Errorf("unknown cache category %q (see 'dartfocus cache stats' for the list)", category)
					}
					removed, err = engine.Clear(cmd.Context(), c)
				}
				if err != nil {
					return err
				}

				cmd.Printf("removed %d entries\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "clear a single category")
	cmd.Flags().BoolVar(&all, "all", false, "clear every category")
	return cmd
}

func newCacheSweepCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired entries now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEngine(app, func(engine *cache.Engine) error {
				removed, err := engine.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("swept %d expired entries\n", removed)
				return nil
			})
		},
	}
}
