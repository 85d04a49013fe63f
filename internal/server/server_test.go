package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/dart"
	"github.com/rshade/dartfocus/internal/server"
	"github.com/rshade/dartfocus/internal/tools"
)

type stubUpstream struct {
	profile    *dart.CompanyProfile
	profileErr error
}

func (s *stubUpstream) CompanyProfile(context.Context, string) (*dart.CompanyProfile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profile, nil
}

func (s *stubUpstream) FinancialStatements(context.Context, string, string, string, string) ([]dart.Account, error) {
	return nil, dart.ErrNoData
}

func (s *stubUpstream) Disclosures(context.Context, string, string, string, int) (*dart.DisclosureList, error) {
	return &dart.DisclosureList{TotalCount: 0}, nil
}

func newTestServer(t *testing.T, upstream tools.Upstream) *httptest.Server {
	t.Helper()

	engine, err := cache.NewEngine(cache.NewMemoryStore(), cache.DefaultPolicyTable())
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	svc := tools.NewService(engine, upstream, zerolog.Nop())
	ts := httptest.NewServer(server.New(svc, zerolog.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Healthz(t *testing.T) {
	ts := newTestServer(t, &stubUpstream{})

	var body map[string]any
	status := getJSON(t, ts.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_CompanyEndpoint(t *testing.T) {
	upstream := &stubUpstream{profile: &dart.CompanyProfile{CorpCode: "00126380", CorpName: "삼성전자(주)"}}
	ts := newTestServer(t, upstream)

	var profile dart.CompanyProfile
	status := getJSON(t, ts.URL+"/api/v1/company/00126380", &profile)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "삼성전자(주)", profile.CorpName)
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "no data", err: dart.ErrNoData, wantStatus: http.StatusNotFound},
		{name: "quota", err: dart.ErrQuotaExceeded, wantStatus: http.StatusTooManyRequests},
		{name: "bad key", err: dart.ErrInvalidAPIKey, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &stubUpstream{profileErr: tt.err})
			status := getJSON(t, ts.URL+"/api/v1/company/00126380", nil)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestServer_FinancialsNoData(t *testing.T) {
	ts := newTestServer(t, &stubUpstream{})

	status := getJSON(t, ts.URL+"/api/v1/financials/00126380?year=2023", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_TimeSeriesBadMetric(t *testing.T) {
	ts := newTestServer(t, &stubUpstream{})

	status := getJSON(t, ts.URL+"/api/v1/timeseries/00126380?metric=ebitda", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_CacheStats(t *testing.T) {
	upstream := &stubUpstream{profile: &dart.CompanyProfile{CorpCode: "00126380", CorpName: "삼성전자(주)"}}
	ts := newTestServer(t, upstream)

	// Populate one entry, then hit it once.
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/company/00126380", nil))
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/company/00126380", nil))

	var stats cache.Stats
	status := getJSON(t, ts.URL+"/api/v1/cache/stats", &stats)
	assert.Equal(t, http.StatusOK, status)

	companyStats := stats.Categories[cache.CategoryCompanyInfo]
	assert.Equal(t, int64(1), companyStats.Hits)
	assert.Equal(t, int64(1), companyStats.Misses)
	assert.Equal(t, 1, companyStats.Entries)
}

func TestServer_CacheClear(t *testing.T) {
	upstream := &stubUpstream{profile: &dart.CompanyProfile{CorpCode: "00126380", CorpName: "삼성전자(주)"}}
	ts := newTestServer(t, upstream)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/company/00126380", nil))

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/cache?category=company-info", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["removed"])
}

func TestServer_CacheClearUnknownCategory(t *testing.T) {
	ts := newTestServer(t, &stubUpstream{})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/cache?category=bogus", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubUpstream{})

	status := getJSON(t, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
}
