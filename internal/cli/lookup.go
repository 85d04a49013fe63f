package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/dartfocus/internal/config"
	"github.com/rshade/dartfocus/internal/dart"
	"github.com/rshade/dartfocus/internal/tools"
)

// withService runs fn with a fully wired tool service and tears it down
// afterwards.
func withService(app *appState, cmd *cobra.Command, fn func(*tools.Service) (json.RawMessage, error)) error {
	svc, engine, err := buildService(app)
	if err != nil {
		return err
	}
	if engine != nil {
		defer func() { _ = engine.Close() }()
	}

	payload, err := fn(svc)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), payload)
}

func newCompanyCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "company <corp_code>",
		Short: "Look up a company's master record",
		Long:  "Look up a company's OpenDART master record by its 8-digit corp code.\nRequires an OpenDART API key via " + config.EnvAPIKey + " or dart.api_key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(app, cmd, func(svc *tools.Service) (json.RawMessage, error) {
				return svc.CompanyInfo(cmd.Context(), args[0])
			})
		},
	}
}

func newFinancialsCmd(app *appState) *cobra.Command {
	var (
		year       string
		reportCode string
	)

	cmd := &cobra.Command{
		Use:   "financials <corp_code>",
		Short: "Fetch financial statement line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == "" {
				year = strconv.Itoa(time.Now().Year() - 1)
			}
			return withService(app, cmd, func(svc *tools.Service) (json.RawMessage, error) {
				return svc.FinancialStatement(cmd.Context(), args[0], year, reportCode)
			})
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "business year (default last year)")
	cmd.Flags().StringVar(&reportCode, "report-code", dart.ReportAnnual, "report code (11011 annual, 11012 half, 11013 Q1, 11014 Q3)")
	return cmd
}

func newRatiosCmd(app *appState) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "ratios <corp_code>",
		Short: "Derive financial ratios for a business year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == "" {
				year = strconv.Itoa(time.Now().Year() - 1)
			}
			return withService(app, cmd, func(svc *tools.Service) (json.RawMessage, error) {
				return svc.FinancialRatios(cmd.Context(), args[0], year)
			})
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "business year (default last year)")
	return cmd
}

func newDisclosuresCmd(app *appState) *cobra.Command {
	var (
		from      string
		to        string
		pageCount int
	)

	cmd := &cobra.Command{
		Use:   "disclosures <corp_code>",
		Short: "List recent filings for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageCount < 1 || pageCount > 100 {
				return fmt.Errorf("page-count must be between 1 and 100, got %d", pageCount)
			}

			now := time.Now()
			if to == "" {
				to = now.Format("20060102")
			}
			if from == "" {
				from = now.AddDate(0, -3, 0).Format("20060102")
			}

			return withService(app, cmd, func(svc *tools.Service) (json.RawMessage, error) {
				return svc.Disclosures(cmd.Context(), args[0], from, to, pageCount)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start, YYYYMMDD (default 3 months ago)")
	cmd.Flags().StringVar(&to, "to", "", "window end, YYYYMMDD (default today)")
	cmd.Flags().IntVar(&pageCount, "page-count", 10, "filings per page (1-100)")
	return cmd
}

func newTimeSeriesCmd(app *appState) *cobra.Command {
	var (
		metric      string
		fromYear    int
		toYear      int
		projections int
	)

	cmd := &cobra.Command{
		Use:   "timeseries <corp_code>",
		Short: "Project a yearly metric series",
		Long:  "Pull a company's yearly metric history and extend it with trend\nprojections. Companies with no filing history get a synthetic series\nmarked source=synthetic.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(app, cmd, func(svc *tools.Service) (json.RawMessage, error) {
				return svc.TimeSeries(cmd.Context(), args[0], metric, fromYear, toYear, projections)
			})
		},
	}

	cmd.Flags().StringVar(&metric, "metric", tools.MetricRevenue, "metric: revenue, operating_income, or net_income")
	cmd.Flags().IntVar(&fromYear, "from", 0, "first business year (default window end minus 4)")
	cmd.Flags().IntVar(&toYear, "to", 0, "last business year (default last year)")
	cmd.Flags().IntVar(&projections, "project", 2, "projected years to append")
	return cmd
}
