package dart

// envelope is the response wrapper every OpenDART JSON endpoint shares.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OpenDART status codes.
const (
	statusOK            = "000"
	statusNoData        = "013"
	statusUnregistered  = "010"
	statusExpiredKey    = "011"
	statusQuotaExceeded = "020"
)

// CompanyProfile is the company master record from company.json.
type CompanyProfile struct {
	CorpCode      string `json:"corp_code"`
	CorpName      string `json:"corp_name"`
	CorpNameEng   string `json:"corp_name_eng"`
	StockName     string `json:"stock_name"`
	StockCode     string `json:"stock_code"`
	CEOName       string `json:"ceo_nm"`
	CorpClass     string `json:"corp_cls"`
	Address       string `json:"adres"`
	HomepageURL   string `json:"hm_url"`
	IndustryCode  string `json:"induty_code"`
	Established   string `json:"est_dt"`
	FiscalMonth   string `json:"acc_mt"`
	PhoneNumber   string `json:"phn_no"`
	CorpRegNumber string `json:"jurir_no"`
}

// Account is one financial-statement line item from fnlttSinglAcntAll.json.
type Account struct {
	ReceiptNo      string `json:"rcept_no"`
	ReportCode     string `json:"reprt_code"`
	BusinessYear   string `json:"bsns_year"`
	CorpCode       string `json:"corp_code"`
	StatementDiv   string `json:"sj_div"`
	StatementName  string `json:"sj_nm"`
	AccountID      string `json:"account_id"`
	AccountName    string `json:"account_nm"`
	FSDiv          string `json:"fs_div"`
	CurrentAmount  string `json:"thstrm_amount"`
	PriorAmount    string `json:"frmtrm_amount"`
	PrePriorAmount string `json:"bfefrmtrm_amount"`
	Currency       string `json:"currency"`
}

// Statement divisions used by the analysis layer.
const (
	StatementBalanceSheet = "BS"
	StatementIncome       = "IS"
	StatementComprehens   = "CIS"
	StatementCashFlow     = "CF"
)

// Financial statement divisions.
const (
	FSConsolidated = "CFS"
	FSSeparate     = "OFS"
)

// Report codes by filing period.
const (
	ReportAnnual = "11011"
	ReportHalf   = "11012"
	ReportQ1     = "11013"
	ReportQ3     = "11014"
)

// Disclosure is one filing from list.json.
type Disclosure struct {
	CorpCode   string `json:"corp_code"`
	CorpName   string `json:"corp_name"`
	StockCode  string `json:"stock_code"`
	CorpClass  string `json:"corp_cls"`
	ReportName string `json:"report_nm"`
	ReceiptNo  string `json:"rcept_no"`
	FilerName  string `json:"flr_nm"`
	ReceiptDt  string `json:"rcept_dt"`
	Remark     string `json:"rm"`
}

// DisclosureList is the paged filing listing for one company and window.
type DisclosureList struct {
	PageNo      int          `json:"page_no"`
	PageCount   int          `json:"page_count"`
	TotalCount  int          `json:"total_count"`
	TotalPage   int          `json:"total_page"`
	Disclosures []Disclosure `json:"list"`
}
