package cache

// Category classifies cached data by the tool that produced it. Each category
// carries its own TTL and capacity policy. The set is closed: internally
// issued puts always use one of the constants below, so an unknown category
// can only arise from external misconfiguration.
type Category string

// All known cache categories.
const (
	CategoryCompanyInfo           Category = "company-info"
	CategoryFinancialStatement    Category = "financial-statement"
	CategoryFinancialRatio        Category = "financial-ratio"
	CategoryDisclosureList        Category = "disclosure-list"
	CategoryNews                  Category = "news"
	CategorySentiment             Category = "sentiment"
	CategoryHealthScore           Category = "health-score"
	CategoryInvestmentSignal      Category = "investment-signal"
	CategoryReport                Category = "report"
	CategoryPDFExport             Category = "pdf-export"
	CategoryPortfolioOptimization Category = "portfolio-optimization"
	CategoryTimeSeries            Category = "time-series"
	CategoryBenchmark             Category = "benchmark"
	CategoryCompetitiveAnalysis   Category = "competitive-analysis"
	CategoryIndustryReport        Category = "industry-report"
)

// categories lists every category in stable display order.
//
//nolint:gochecknoglobals // Static enumeration of the closed category set
var categories = []Category{
	CategoryCompanyInfo,
	CategoryFinancialStatement,
	CategoryFinancialRatio,
	CategoryDisclosureList,
	CategoryNews,
	CategorySentiment,
	CategoryHealthScore,
	CategoryInvestmentSignal,
	CategoryReport,
	CategoryPDFExport,
	CategoryPortfolioOptimization,
	CategoryTimeSeries,
	CategoryBenchmark,
	CategoryCompetitiveAnalysis,
	CategoryIndustryReport,
}

// Categories returns every known category in stable order. The returned
// slice is a copy and safe to mutate.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
