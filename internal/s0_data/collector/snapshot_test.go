package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/logger"
)

func viableQuote(symbol string) contracts.Quote {
	return contracts.Quote{
		Symbol:    symbol,
		ShortName: symbol + " Inc",
		Price:     fptr(50),
		Volume:    iptr64(1_000_000),
		MarketCap: iptr64(5_000_000_000),
	}
}

func TestViable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*contracts.Quote)
		want   bool
	}{
		{"complete quote", func(q *contracts.Quote) {}, true},
		{"missing name", func(q *contracts.Quote) { q.ShortName = "" }, false},
		{"long name suffices", func(q *contracts.Quote) {
			q.ShortName = ""
			q.LongName = "Acme Corporation"
		}, true},
		{"missing price", func(q *contracts.Quote) { q.Price = nil }, false},
		{"missing volume", func(q *contracts.Quote) { q.Volume = nil }, false},
		{"dollar volume below floor", func(q *contracts.Quote) {
			q.Price = fptr(0.10)
			q.Volume = iptr64(100)
		}, false},
		{"missing market cap", func(q *contracts.Quote) { q.MarketCap = nil }, false},
		{"market cap below floor", func(q *contracts.Quote) { q.MarketCap = iptr64(100_000_000) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := viableQuote("ACME")
			tt.mutate(&q)
			assert.Equal(t, tt.want, Viable(&q, 1_000_000, 300_000_000))
		})
	}
}

func TestSnapshotImporter_Run(t *testing.T) {
	dead := viableQuote("DEAD")
	dead.Price = fptr(0.05)
	dead.Volume = iptr64(1000)

	provider := &fakeProvider{
		quotes: []contracts.Quote{viableQuote("AAA"), viableQuote("BBB"), dead},
	}
	stocks := &fakeStockRepo{}

	imp := NewSnapshotImporter(provider, stocks, testCache(), testJobsConfig(), logger.NewSilent())

	// GONE is requested but the provider returns nothing for it
	result, err := imp.Run(context.Background(), []string{"AAA", "BBB", "DEAD", "GONE"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 1, result.Failed)
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, stocks.upserted)
	assert.Equal(t, []string{"DEAD"}, stocks.deleted)
}

func TestSnapshotImporter_BatchFailureContinues(t *testing.T) {
	provider := &fakeProvider{quotesErr: assert.AnError}
	stocks := &fakeStockRepo{}

	cfg := testJobsConfig()
	cfg.QuoteBatchSize = 2
	imp := NewSnapshotImporter(provider, stocks, testCache(), cfg, logger.NewSilent())

	result, err := imp.Run(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	// both batches failed wholesale, nothing was written or removed
	assert.Equal(t, 3, result.Failed)
	assert.Empty(t, stocks.upserted)
	assert.Empty(t, stocks.deleted)
}
