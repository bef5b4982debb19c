package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/httputil"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

func newTestClient(t *testing.T, quoteURL string) *Client {
	t.Helper()

	cfg := &config.Config{
		Env:      "development",
		LogLevel: "error",
		Provider: config.ProviderConfig{
			QuoteBaseURL:   quoteURL,
			RequestsPerSec: 1000, // not exercising the limiter here
			Burst:          10,
		},
	}
	log := logger.NewSilent()
	return NewClient(cfg, httputil.New(cfg, log).DisableRetry(), log)
}

func TestFetchQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "symbols=")
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [
					{
						"symbol": "KO",
						"shortName": "Coca-Cola",
						"regularMarketPrice": 62.5,
						"regularMarketVolume": 12000000,
						"marketCap": 270000000000,
						"dividendYield": 3.1,
						"exDividendDate": 1191196800
					},
					{
						"symbol": "PG",
						"shortName": "Procter & Gamble",
						"regularMarketPrice": 160.0,
						"regularMarketVolume": 6000000
					}
				],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	quotes, err := client.FetchQuotes(context.Background(), []string{"KO", "PG"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	ko := quotes[0]
	assert.Equal(t, "KO", ko.Symbol)
	assert.Equal(t, "Coca-Cola", ko.ShortName)
	require.NotNil(t, ko.Price)
	assert.Equal(t, 62.5, *ko.Price)
	require.NotNil(t, ko.MarketCap)
	assert.Equal(t, int64(270000000000), *ko.MarketCap)
	require.NotNil(t, ko.ExDividendDate)
	assert.Equal(t, 2007, ko.ExDividendDate.Year())

	// Absent fields stay nil
	assert.Nil(t, quotes[1].DividendYield)
	assert.Nil(t, quotes[1].MarketCap)
}

func TestFetchQuotes_PartialSalvage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [
					{"symbol": "KO", "regularMarketPrice": 62.5}
				],
				"error": {"code": "validation", "description": "one symbol failed validation"}
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	quotes, err := client.FetchQuotes(context.Background(), []string{"KO", "BADSYM"})
	require.NoError(t, err, "partial results must be salvaged, not dropped")
	require.Len(t, quotes, 1)
	assert.Equal(t, "KO", quotes[0].Symbol)
}

func TestFetchQuotes_TotalFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [],
				"error": {"code": "Bad Request", "description": "no symbols"}
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchQuotes(context.Background(), []string{"BADSYM"})
	assert.Error(t, err)
}

func TestFetchQuotes_EmptyInput(t *testing.T) {
	client := newTestClient(t, "http://unused")

	quotes, err := client.FetchQuotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFetchQuotes_SkipsRecordsWithoutSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [
					{"regularMarketPrice": 1.0},
					{"symbol": "KO", "regularMarketPrice": 62.5}
				],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	quotes, err := client.FetchQuotes(context.Background(), []string{"KO"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "KO", quotes[0].Symbol)
}

func TestFetchQuotes_SharedLimiterPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"quoteResponse": {
				"result": [{"symbol": "KO", "regularMarketPrice": 62.5}],
				"error": null
			}
		}`))
	}))
	defer server.Close()

	// Disabled Redis passes every window check through
	redisClient, err := redis.New(&config.Config{})
	require.NoError(t, err)

	client := newTestClient(t, server.URL).
		WithSharedLimiter(redis.NewRateLimiter(redisClient, "test"))

	quotes, err := client.FetchQuotes(context.Background(), []string{"KO"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
}
