// Package dart is the HTTP client for the public OpenDART
// financial-disclosure API. It is the upstream data source behind the cache:
// handlers call it only after a cache miss, and it never touches the cache
// itself.
package dart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/dartfocus/internal/logging"
)

// Upstream error taxonomy. ErrNoData is the "empty result" outcome
// ("013"), distinct from transport or key problems.
var (
	ErrNoData        = errors.New("opendart returned no data")
	ErrInvalidAPIKey = errors.New("opendart api key is invalid or expired")
	ErrQuotaExceeded = errors.New("opendart api quota exceeded")
)

// APIError is a non-OK OpenDART status outside the dedicated sentinels.
type APIError struct {
	Status  string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("opendart api error %s: %s", e.Status, e.Message)
}

// Client calls the OpenDART JSON endpoints. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an OpenDART client. baseURL has no trailing slash, e.g.
// "https://opendart.fss.or.kr/api".
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.ComponentLogger(logger, "dart"),
	}
}

// get performs one API call and decodes the body into out, which must embed
// the shared status envelope via a separate decode pass.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	query.Set("crtfc_key", c.apiKey)

	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build opendart request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("opendart request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("failed to read opendart response: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("opendart request")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opendart http error: %s", resp.Status)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode opendart response: %w", err)
	}
	if err := env.err(); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode opendart payload: %w", err)
	}
	return nil
}

// err maps the envelope status to the error taxonomy.
func (e envelope) err() error {
	switch e.Status {
	case statusOK:
		return nil
	case statusNoData:
		return fmt.Errorf("%w: %s", ErrNoData, e.Message)
	case statusUnregistered, statusExpiredKey:
		return fmt.Errorf("%w: %s", ErrInvalidAPIKey, e.Message)
	case statusQuotaExceeded:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, e.Message)
	default:
		return &APIError{Status: e.Status, Message: e.Message}
	}
}

// CompanyProfile fetches the company master record for corpCode.
func (c *Client) CompanyProfile(ctx context.Context, corpCode string) (*CompanyProfile, error) {
	var out CompanyProfile

	query := url.Values{"corp_code": {corpCode}}
	if err := c.get(ctx, "company.json", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinancialStatements fetches every statement line item for one company,
// business year, report period, and statement division (CFS or OFS).
func (c *Client) FinancialStatements(ctx context.Context, corpCode, year, reportCode, fsDiv string) ([]Account, error) {
	var out struct {
		List []Account `json:"list"`
	}

	query := url.Values{
		"corp_code":  {corpCode},
		"bsns_year":  {year},
		"reprt_code": {reportCode},
		"fs_div":     {fsDiv},
	}
	if err := c.get(ctx, "fnlttSinglAcntAll.json", query, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// Disclosures fetches the filing list for one company inside the
// [from, to] date window (YYYYMMDD), pageCount filings per page.
func (c *Client) Disclosures(ctx context.Context, corpCode, from, to string, pageCount int) (*DisclosureList, error) {
	var out DisclosureList

	query := url.Values{
		"corp_code":  {corpCode},
		"bgn_de":     {from},
		"end_de":     {to},
		"page_count": {strconv.Itoa(pageCount)},
	}
	if err := c.get(ctx, "list.json", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParseAmount converts an OpenDART amount string ("1,234,567") to a float.
// Missing values arrive as "-" or the empty string and parse to zero, which
// mirrors how the statements themselves mark not-applicable lines.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
