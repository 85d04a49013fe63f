package dart_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dartfocus/internal/dart"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *dart.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return dart.NewClient(server.URL, "test-key", 5*time.Second, zerolog.Nop())
}

func TestClient_CompanyProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
		assert.Equal(t, "00126380", r.URL.Query().Get("corp_code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "000",
			"message": "정상",
			"corp_code": "00126380",
			"corp_name": "삼성전자(주)",
			"stock_code": "005930",
			"ceo_nm": "한종희",
			"induty_code": "264"
		}`))
	})

	profile, err := client.CompanyProfile(context.Background(), "00126380")
	require.NoError(t, err)

	assert.Equal(t, "00126380", profile.CorpCode)
	assert.Equal(t, "삼성전자(주)", profile.CorpName)
	assert.Equal(t, "005930", profile.StockCode)
}

func TestClient_FinancialStatements(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fnlttSinglAcntAll.json", r.URL.Path)
		assert.Equal(t, "2023", r.URL.Query().Get("bsns_year"))
		assert.Equal(t, dart.ReportAnnual, r.URL.Query().Get("reprt_code"))
		assert.Equal(t, dart.FSConsolidated, r.URL.Query().Get("fs_div"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "000",
			"message": "정상",
			"list": [
				{"sj_div": "BS", "account_nm": "자산총계", "thstrm_amount": "455,905,980,000,000"},
				{"sj_div": "IS", "account_nm": "매출액", "thstrm_amount": "258,935,494,000,000"}
			]
		}`))
	})

	accounts, err := client.FinancialStatements(context.Background(), "00126380", "2023", dart.ReportAnnual, dart.FSConsolidated)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "자산총계", accounts[0].AccountName)
	assert.InDelta(t, 455905980000000.0, dart.ParseAmount(accounts[0].CurrentAmount), 1)
}

func TestClient_Disclosures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list.json", r.URL.Path)
		assert.Equal(t, "20250101", r.URL.Query().Get("bgn_de"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "000",
			"message": "정상",
			"page_no": 1,
			"page_count": 10,
			"total_count": 1,
			"total_page": 1,
			"list": [
				{"corp_name": "삼성전자", "report_nm": "사업보고서 (2024.12)", "rcept_no": "20250311001234", "rcept_dt": "20250311"}
			]
		}`))
	})

	list, err := client.Disclosures(context.Background(), "00126380", "20250101", "20250401", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)
	require.Len(t, list.Disclosures, 1)
	assert.Equal(t, "20250311001234", list.Disclosures[0].ReceiptNo)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{name: "no data", status: "013", wantErr: dart.ErrNoData},
		{name: "unregistered key", status: "010", wantErr: dart.ErrInvalidAPIKey},
		{name: "expired key", status: "011", wantErr: dart.ErrInvalidAPIKey},
		{name: "quota exceeded", status: "020", wantErr: dart.ErrQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status": "` + tt.status + `", "message": "오류"}`))
			})

			_, err := client.CompanyProfile(context.Background(), "00126380")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("unknown status becomes APIError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status": "800", "message": "시스템 점검"}`))
		})

		_, err := client.CompanyProfile(context.Background(), "00126380")
		var apiErr *dart.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "800", apiErr.Status)
	})

	t.Run("http error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.CompanyProfile(context.Background(), "00126380")
		assert.Error(t, err)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "comma separated", in: "1,234,567", want: 1234567},
		{name: "negative", in: "-42,000", want: -42000},
		{name: "missing dash", in: "-", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "whitespace", in: " 100 ", want: 100},
		{name: "garbage", in: "n/a", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dart.ParseAmount(tt.in), 1e-9)
		})
	}
}
