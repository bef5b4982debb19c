package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/redis"
)

// Shared fakes over the contracts interfaces.

type fakeProvider struct {
	quotes    []contracts.Quote
	quotesErr error

	histories  map[string]*contracts.History
	historyErr map[string]error
	sinceSeen  map[string]time.Time

	profiles   map[string]*contracts.Profile
	profileErr map[string]error
}

func (f *fakeProvider) FetchQuotes(ctx context.Context, symbols []string) ([]contracts.Quote, error) {
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	var out []contracts.Quote
	for _, q := range f.quotes {
		if want[q.Symbol] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeProvider) FetchHistory(ctx context.Context, symbol string, since time.Time) (*contracts.History, error) {
	if f.sinceSeen == nil {
		f.sinceSeen = make(map[string]time.Time)
	}
	f.sinceSeen[symbol] = since
	if err := f.historyErr[symbol]; err != nil {
		return nil, err
	}
	if h, ok := f.histories[symbol]; ok {
		return h, nil
	}
	return &contracts.History{Symbol: symbol}, nil
}

func (f *fakeProvider) FetchProfile(ctx context.Context, symbol string) (*contracts.Profile, error) {
	if err := f.profileErr[symbol]; err != nil {
		return nil, err
	}
	if p, ok := f.profiles[symbol]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no profile for %s", symbol)
}

type fakeStockRepo struct {
	missingClassification []string

	upserted []string
	deleted  []string
	updates  map[string]*contracts.ProfileUpdate
}

func (f *fakeStockRepo) UpsertSnapshot(ctx context.Context, q *contracts.Quote) error {
	f.upserted = append(f.upserted, q.Symbol)
	return nil
}

func (f *fakeStockRepo) Delete(ctx context.Context, symbol string) error {
	f.deleted = append(f.deleted, symbol)
	return nil
}

func (f *fakeStockRepo) ListSymbols(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeStockRepo) ListSymbolsMissingClassification(ctx context.Context) ([]string, error) {
	return f.missingClassification, nil
}

func (f *fakeStockRepo) ListSymbolsMissingRecessionReturn(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}

func (f *fakeStockRepo) UpdateDividendMetrics(ctx context.Context, m *contracts.DividendMetrics) error {
	return nil
}

func (f *fakeStockRepo) UpdateRecessionPerformance(ctx context.Context, p *contracts.RecessionPerformance) error {
	return nil
}

func (f *fakeStockRepo) UpdateProfile(ctx context.Context, symbol string, u *contracts.ProfileUpdate) error {
	if f.updates == nil {
		f.updates = make(map[string]*contracts.ProfileUpdate)
	}
	f.updates[symbol] = u
	return nil
}

type fakePriceRepo struct {
	latest  map[string]time.Time
	inserts [][]contracts.PriceBar
}

func (f *fakePriceRepo) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	d, ok := f.latest[symbol]
	return d, ok, nil
}

func (f *fakePriceRepo) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceBar, error) {
	return nil, nil
}

func (f *fakePriceRepo) InsertBatch(ctx context.Context, bars []contracts.PriceBar) error {
	f.inserts = append(f.inserts, bars)
	return nil
}

type fakeDividendRepo struct {
	inserts [][]contracts.DividendEvent
}

func (f *fakeDividendRepo) DistinctSymbols(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeDividendRepo) GetBySymbol(ctx context.Context, symbol string) ([]contracts.DividendEvent, error) {
	return nil, nil
}

func (f *fakeDividendRepo) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.DividendEvent, error) {
	return nil, nil
}

func (f *fakeDividendRepo) InsertBatch(ctx context.Context, events []contracts.DividendEvent) error {
	f.inserts = append(f.inserts, events)
	return nil
}

type fakeSplitRepo struct {
	inserts [][]contracts.SplitEvent
}

func (f *fakeSplitRepo) InsertBatch(ctx context.Context, splits []contracts.SplitEvent) error {
	f.inserts = append(f.inserts, splits)
	return nil
}

type fakeLookup struct {
	ids      map[string]int
	next     int
	preloads int
}

func (f *fakeLookup) Preload(ctx context.Context) error {
	f.preloads++
	return nil
}

func (f *fakeLookup) GetOrCreate(ctx context.Context, name string) (int, error) {
	if f.ids == nil {
		f.ids = make(map[string]int)
	}
	if id, ok := f.ids[name]; ok {
		return id, nil
	}
	f.next++
	f.ids[name] = f.next
	return f.next, nil
}

// testJobsConfig returns job tuning with no delays so tests run fast
func testJobsConfig() config.JobsConfig {
	return config.JobsConfig{
		QuoteBatchSize:   200,
		InsertBatchSize:  500,
		RequestDelay:     0,
		HistoryFreshness: 7 * 24 * time.Hour,
		MinDollarVolume:  1_000_000,
		MinMarketCap:     300_000_000,
		RecessionPage:    50,
	}
}

// testCache returns a disabled cache; invalidation becomes a no-op
func testCache() *redis.Cache {
	client, _ := redis.New(&config.Config{})
	return redis.NewCache(client, "test")
}

func fptr(v float64) *float64 { return &v }
func iptr64(v int64) *int64   { return &v }
