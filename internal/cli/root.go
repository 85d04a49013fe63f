// Package cli implements the dartfocus command tree.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/dartfocus/internal/config"
)

// appState carries the loaded configuration and logger from the root
// command's PersistentPreRunE into the subcommands.
type appState struct {
	cfg         *config.Config
	logger      zerolog.Logger
	closeLogger func() error
}

// NewRootCmd creates the root Cobra command for the dartfocus CLI.
func NewRootCmd(ver string) *cobra.Command {
	app := &appState{}

	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:           "dartfocus",
		Short:         "Korean corporate disclosure lookups with a durable cache",
		Long:          "dartfocus answers OpenDART company, financial, and disclosure queries\nthrough a categorized TTL cache so repeated lookups stay fast and cheap.",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				if home, err := os.UserHomeDir(); err == nil {
					path = filepath.Join(home, ".dartfocus", "config.yaml")
				}
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if debug {
				cfg.Logging.Level = "debug"
			}

			logger, closeLogger, err := config.InitLogger(cfg.Logging)
			if err != nil {
				return err
			}

			app.cfg = cfg
			app.logger = logger
			app.closeLogger = closeLogger
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app.closeLogger != nil {
				return app.closeLogger()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.dartfocus/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(app),
		newCompanyCmd(app),
		newFinancialsCmd(app),
		newRatiosCmd(app),
		newDisclosuresCmd(app),
		newTimeSeriesCmd(app),
		newCacheCmd(app),
	)

	return cmd
}
