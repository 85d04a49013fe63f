package analysis

import (
	"errors"
	"strings"

	"github.com/rshade/dartfocus/internal/dart"
)

// ErrAccountNotFound is returned when a ratio's input line item cannot be
// located in the statement set.
var ErrAccountNotFound = errors.New("account not found in statements")

// Ratios holds the derived ratio set for a single company and year.
// All values are percentages except CurrentRatio, which is a multiple.
type Ratios struct {
	CorpCode        string  `json:"corp_code"`
	Year            string  `json:"year"`
	DebtRatio       float64 `json:"debt_ratio"`
	CurrentRatio    float64 `json:"current_ratio"`
	ROE             float64 `json:"roe"`
	ROA             float64 `json:"roa"`
	OperatingMargin float64 `json:"operating_margin"`
	NetMargin       float64 `json:"net_margin"`
}

// Account name patterns as they appear in OpenDART filings. Filers are not
// consistent about spacing or Roman numeral prefixes, so each concept keeps
// a list of candidate names matched by containment after normalization.
var (
	revenuePatterns          = []string{"매출액", "영업수익", "수익(매출액)"}
	operatingIncomePatterns  = []string{"영업이익", "영업이익(손실)"}
	netIncomePatterns        = []string{"당기순이익", "당기순이익(손실)", "분기순이익", "반기순이익"}
	totalAssetsPatterns      = []string{"자산총계"}
	totalLiabilitiesPatterns = []string{"부채총계"}
	totalEquityPatterns      = []string{"자본총계"}
	currentAssetsPatterns    = []string{"유동자산"}
	currentLiabsPatterns     = []string{"유동부채"}
)

// ComputeRatios derives the standard ratio set from one year of statement
// line items. Consolidated figures win when both consolidated and separate
// statements are present in the input.
func ComputeRatios(corpCode, year string, accounts []dart.Account) (*Ratios, error) {
	revenue, err := findAmount(accounts, dart.StatementIncome, revenuePatterns)
	if err != nil {
		// Comprehensive-income-only filers report revenue under CIS.
		revenue, err = findAmount(accounts, dart.StatementComprehens, revenuePatterns)
		if err != nil {
			return nil, err
		}
	}

	operatingIncome, err := findIncomeAmount(accounts, operatingIncomePatterns)
	if err != nil {
		return nil, err
	}
	netIncome, err := findIncomeAmount(accounts, netIncomePatterns)
	if err != nil {
		return nil, err
	}

	totalAssets, err := findAmount(accounts, dart.StatementBalanceSheet, totalAssetsPatterns)
	if err != nil {
		return nil, err
	}
	totalLiabilities, err := findAmount(accounts, dart.StatementBalanceSheet, totalLiabilitiesPatterns)
	if err != nil {
		return nil, err
	}
	totalEquity, err := findAmount(accounts, dart.StatementBalanceSheet, totalEquityPatterns)
	if err != nil {
		return nil, err
	}
	currentAssets, err := findAmount(accounts, dart.StatementBalanceSheet, currentAssetsPatterns)
	if err != nil {
		return nil, err
	}
	currentLiabilities, err := findAmount(accounts, dart.StatementBalanceSheet, currentLiabsPatterns)
	if err != nil {
		return nil, err
	}

	return &Ratios{
		CorpCode:        corpCode,
		Year:            year,
		DebtRatio:       safePct(totalLiabilities, totalEquity),
		CurrentRatio:    safeDiv(currentAssets, currentLiabilities),
		ROE:             safePct(netIncome, totalEquity),
		ROA:             safePct(netIncome, totalAssets),
		OperatingMargin: safePct(operatingIncome, revenue),
		NetMargin:       safePct(netIncome, revenue),
	}, nil
}

// findIncomeAmount searches the income statement first, then the statement
// of comprehensive income, which is where IFRS-only filers report earnings.
func findIncomeAmount(accounts []dart.Account, patterns []string) (float64, error) {
	v, err := findAmount(accounts, dart.StatementIncome, patterns)
	if err == nil {
		return v, nil
	}
	return findAmount(accounts, dart.StatementComprehens, patterns)
}

func findAmount(accounts []dart.Account, sjDiv string, patterns []string) (float64, error) {
	// Exact matches first so "영업이익" never resolves to "영업이익률" style
	// derived rows some filers include.
	for _, pattern := range patterns {
		for _, acct := range accounts {
			if acct.StatementDiv != sjDiv {
				continue
			}
			if normalizeAccountName(acct.AccountName) == pattern {
				return dart.ParseAmount(acct.CurrentAmount), nil
			}
		}
	}
	for _, pattern := range patterns {
		for _, acct := range accounts {
			if acct.StatementDiv != sjDiv {
				continue
			}
			if strings.Contains(normalizeAccountName(acct.AccountName), pattern) {
				return dart.ParseAmount(acct.CurrentAmount), nil
			}
		}
	}
	return 0, ErrAccountNotFound
}

// normalizeAccountName strips whitespace and the Roman numeral section
// prefixes ("Ⅰ. 매출액") that some filers attach.
func normalizeAccountName(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.Index(name, "."); idx >= 0 && idx <= 6 {
		name = name[idx+1:]
	}
	return strings.ReplaceAll(name, " ", "")
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func safePct(num, den float64) float64 {
	return safeDiv(num, den) * 100
}
