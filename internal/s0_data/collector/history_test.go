package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/logger"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func newHistoryImporter(provider *fakeProvider, prices *fakePriceRepo, divs *fakeDividendRepo, splits *fakeSplitRepo, now time.Time) *HistoryImporter {
	h := NewHistoryImporter(provider, prices, divs, splits, testJobsConfig(), logger.NewSilent())
	h.now = func() time.Time { return now }
	return h
}

func TestHistoryImporter_ResumesFromLatestBar(t *testing.T) {
	now := day("2026-08-28")
	provider := &fakeProvider{
		histories: map[string]*contracts.History{
			"AAA": {Symbol: "AAA", Bars: []contracts.PriceBar{{Symbol: "AAA", Date: day("2026-08-20"), AdjClose: 10}}},
		},
	}
	prices := &fakePriceRepo{latest: map[string]time.Time{"AAA": day("2026-08-10")}}
	divs := &fakeDividendRepo{}
	splits := &fakeSplitRepo{}

	imp := newHistoryImporter(provider, prices, divs, splits, now)
	result, err := imp.Run(context.Background(), []string{"AAA"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, day("2026-08-11"), provider.sinceSeen["AAA"], "fetch resumes the day after the latest stored bar")
	require.Len(t, prices.inserts, 1)
}

func TestHistoryImporter_FullFetchForNewSymbol(t *testing.T) {
	provider := &fakeProvider{}
	imp := newHistoryImporter(provider, &fakePriceRepo{}, &fakeDividendRepo{}, &fakeSplitRepo{}, day("2026-08-28"))

	_, err := imp.Run(context.Background(), []string{"NEW"})
	require.NoError(t, err)

	assert.Equal(t, time.Unix(0, 0).UTC(), provider.sinceSeen["NEW"], "no stored bars means fetching from the epoch")
}

func TestHistoryImporter_SkipsFreshSymbols(t *testing.T) {
	now := day("2026-08-28")
	provider := &fakeProvider{}
	prices := &fakePriceRepo{latest: map[string]time.Time{"AAA": day("2026-08-26")}}

	imp := newHistoryImporter(provider, prices, &fakeDividendRepo{}, &fakeSplitRepo{}, now)
	result, err := imp.Run(context.Background(), []string{"AAA"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, provider.sinceSeen, "fresh history must not trigger a fetch")
}

func TestHistoryImporter_SubBatchesInserts(t *testing.T) {
	bars := make([]contracts.PriceBar, 5)
	for i := range bars {
		bars[i] = contracts.PriceBar{Symbol: "AAA", Date: day("2026-08-01").AddDate(0, 0, i), AdjClose: 10}
	}
	provider := &fakeProvider{
		histories: map[string]*contracts.History{"AAA": {Symbol: "AAA", Bars: bars}},
	}
	prices := &fakePriceRepo{}

	imp := newHistoryImporter(provider, prices, &fakeDividendRepo{}, &fakeSplitRepo{}, day("2026-08-28"))
	imp.cfg.InsertBatchSize = 2

	_, err := imp.Run(context.Background(), []string{"AAA"})
	require.NoError(t, err)

	require.Len(t, prices.inserts, 3)
	assert.Len(t, prices.inserts[0], 2)
	assert.Len(t, prices.inserts[1], 2)
	assert.Len(t, prices.inserts[2], 1)
}

func TestHistoryImporter_ContinuesAfterFailure(t *testing.T) {
	provider := &fakeProvider{
		historyErr: map[string]error{"BAD": assert.AnError},
		histories: map[string]*contracts.History{
			"GOOD": {Symbol: "GOOD", Bars: []contracts.PriceBar{{Symbol: "GOOD", Date: day("2026-08-20"), AdjClose: 1}}},
		},
	}
	prices := &fakePriceRepo{}

	imp := newHistoryImporter(provider, prices, &fakeDividendRepo{}, &fakeSplitRepo{}, day("2026-08-28"))
	result, err := imp.Run(context.Background(), []string{"BAD", "GOOD"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Imported)
}
