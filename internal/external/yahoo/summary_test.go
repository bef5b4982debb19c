package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/httputil"
	"github.com/divradar/backend/pkg/logger"
)

func newSummaryTestClient(t *testing.T, summaryURL string) *Client {
	t.Helper()

	cfg := &config.Config{
		Env:      "development",
		LogLevel: "error",
		Provider: config.ProviderConfig{
			SummaryBaseURL: summaryURL,
			RequestsPerSec: 1000,
			Burst:          10,
		},
	}
	log := logger.NewSilent()
	return NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)
}

func TestFetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, "KO"))
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"assetProfile": {"sector": "Consumer Defensive", "country": "United States"},
					"financialData": {
						"beta": {"raw": 0.58, "fmt": "0.58"},
						"ebitda": {"raw": 14000000000, "fmt": "14B"},
						"totalCash": {"raw": 11000000000, "fmt": "11B"},
						"totalDebt": {"raw": 42000000000, "fmt": "42B"},
						"debtToEquity": {"raw": 159.5, "fmt": "159.50"},
						"totalRevenue": {"raw": 45000000000, "fmt": "45B"},
						"operatingMargins": {"raw": 0.29, "fmt": "29%"},
						"effectiveTaxRate": {"raw": 0.21, "fmt": "21%"}
					}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	client := newSummaryTestClient(t, server.URL)

	profile, err := client.FetchProfile(context.Background(), "KO")
	require.NoError(t, err)

	assert.Equal(t, "Consumer Defensive", profile.Sector)
	assert.Equal(t, "United States", profile.Country)
	require.NotNil(t, profile.Beta)
	assert.Equal(t, 0.58, *profile.Beta)
	require.NotNil(t, profile.DebtToEquity)
	assert.Equal(t, 159.5, *profile.DebtToEquity)
	require.NotNil(t, profile.TotalRevenue)
	assert.Equal(t, 45000000000.0, *profile.TotalRevenue)

	require.NotNil(t, profile.EffectiveTaxRate)
	assert.InDelta(t, 0.21, *profile.EffectiveTaxRate, 1e-9)

	// Not present in the payload
	assert.Nil(t, profile.FreeCashflow)
	assert.Nil(t, profile.ProfitMargins)
}

func TestFetchProfile_TaxRateDerived(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("modules"), "incomeStatementHistory")
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"financialData": {
						"totalRevenue": {"raw": 45000000000, "fmt": "45B"}
					},
					"incomeStatementHistory": {
						"incomeStatementHistory": [
							{
								"taxProvision": {"raw": 2100000000, "fmt": "2.1B"},
								"incomeBeforeTax": {"raw": 10000000000, "fmt": "10B"}
							},
							{
								"taxProvision": {"raw": 1800000000, "fmt": "1.8B"},
								"incomeBeforeTax": {"raw": 9000000000, "fmt": "9B"}
							}
						]
					}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	client := newSummaryTestClient(t, server.URL)

	profile, err := client.FetchProfile(context.Background(), "KO")
	require.NoError(t, err)

	// derived from the latest statement when financialData omits the rate
	require.NotNil(t, profile.EffectiveTaxRate)
	assert.InDelta(t, 0.21, *profile.EffectiveTaxRate, 1e-9)
}

func TestFetchProfile_TaxRateMissingEverywhere(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [{
					"incomeStatementHistory": {
						"incomeStatementHistory": [
							{"taxProvision": {"raw": 100}, "incomeBeforeTax": {"raw": 0}}
						]
					}
				}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	client := newSummaryTestClient(t, server.URL)

	profile, err := client.FetchProfile(context.Background(), "KO")
	require.NoError(t, err)
	assert.Nil(t, profile.EffectiveTaxRate)
}

func TestFetchProfile_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteSummary": {
				"result": [],
				"error": {"code": "Not Found", "description": "Quote not found"}
			}
		}`))
	}))
	defer server.Close()

	client := newSummaryTestClient(t, server.URL)

	_, err := client.FetchProfile(context.Background(), "NOPE")
	assert.Error(t, err)
}
