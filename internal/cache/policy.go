package cache

import (
	"errors"
	"fmt"
	"time"
)

// Policy validation errors.
var (
	// ErrUnknownCategory is returned when a put or policy entry names a
	// category outside the closed set. This is a caller bug (or external
	// misconfiguration) and is never silently mapped to a default policy.
	ErrUnknownCategory = errors.New("unknown cache category")

	// ErrInvalidPolicy is returned when a policy carries a non-positive TTL
	// or a capacity below one entry.
	ErrInvalidPolicy = errors.New("invalid cache policy")
)

// Policy holds the TTL and capacity bound for one category. TTL applies at
// insertion time; changing a policy never retroactively moves the expiry of
// entries already stored.
type Policy struct {
	TTL        time.Duration
	MaxEntries int
}

// PolicyTable maps each category to its policy. It is loaded once at process
// start and treated as immutable thereafter.
type PolicyTable map[Category]Policy

// DefaultPolicyTable returns the built-in policy table. TTLs reflect how
// volatile each category's data is: disclosure filings churn within hours,
// company master data is stable for a day, rendered reports last days.
func DefaultPolicyTable() PolicyTable {
	return PolicyTable{
		CategoryCompanyInfo:           {TTL: 24 * time.Hour, MaxEntries: 1000},
		CategoryFinancialStatement:    {TTL: 24 * time.Hour, MaxEntries: 5000},
		CategoryFinancialRatio:        {TTL: 12 * time.Hour, MaxEntries: 2000},
		CategoryDisclosureList:        {TTL: 6 * time.Hour, MaxEntries: 3000},
		CategoryNews:                  {TTL: 2 * time.Hour, MaxEntries: 1000},
		CategorySentiment:             {TTL: 4 * time.Hour, MaxEntries: 800},
		CategoryHealthScore:           {TTL: 12 * time.Hour, MaxEntries: 300},
		CategoryInvestmentSignal:      {TTL: 8 * time.Hour, MaxEntries: 200},
		CategoryReport:                {TTL: 24 * time.Hour, MaxEntries: 100},
		CategoryPDFExport:             {TTL: 72 * time.Hour, MaxEntries: 50},
		CategoryPortfolioOptimization: {TTL: 12 * time.Hour, MaxEntries: 150},
		CategoryTimeSeries:            {TTL: 24 * time.Hour, MaxEntries: 200},
		CategoryBenchmark:             {TTL: 24 * time.Hour, MaxEntries: 300},
		CategoryCompetitiveAnalysis:   {TTL: 12 * time.Hour, MaxEntries: 200},
		CategoryIndustryReport:        {TTL: 72 * time.Hour, MaxEntries: 50},
	}
}

// Lookup returns the policy for c, or ErrUnknownCategory if the table has no
// entry for it.
func (t PolicyTable) Lookup(c Category) (Policy, error) {
	p, ok := t[c]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return p, nil
}

// Validate checks that every table entry names a known category and carries
// a usable policy. A capacity below one entry would make every insertion into
// that category unsatisfiable, so it is rejected here rather than discovered
// at put time.
func (t PolicyTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: policy table is empty", ErrInvalidPolicy)
	}

	for c, p := range t {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
		if p.TTL <= 0 {
			return fmt.Errorf("%w: category %q has non-positive ttl %s", ErrInvalidPolicy, c, p.TTL)
		}
		if p.MaxEntries < 1 {
			return fmt.Errorf("%w: category %q has max_entries %d, need at least 1", ErrInvalidPolicy, c, p.MaxEntries)
		}
	}

	return nil
}
