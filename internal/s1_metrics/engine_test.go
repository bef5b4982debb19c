package s1_metrics

import (
	"context"
	"sort"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/redis"
)

// In-memory fakes over the contracts interfaces. The stock fake mirrors
// the real NULL-filtering behavior: persisting a recession result removes
// the symbol from the missing-recession selection.

type memStockRepo struct {
	missingRecession []string

	dividendMetrics map[string]*contracts.DividendMetrics
	recession       map[string]*contracts.RecessionPerformance

	recessionUpdateErr error
}

func newMemStockRepo(missingRecession ...string) *memStockRepo {
	return &memStockRepo{
		missingRecession: missingRecession,
		dividendMetrics:  make(map[string]*contracts.DividendMetrics),
		recession:        make(map[string]*contracts.RecessionPerformance),
	}
}

func (m *memStockRepo) UpsertSnapshot(ctx context.Context, q *contracts.Quote) error { return nil }
func (m *memStockRepo) Delete(ctx context.Context, symbol string) error              { return nil }
func (m *memStockRepo) ListSymbols(ctx context.Context) ([]string, error)            { return nil, nil }
func (m *memStockRepo) ListSymbolsMissingClassification(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *memStockRepo) ListSymbolsMissingRecessionReturn(ctx context.Context, limit int) ([]string, error) {
	var out []string
	for _, s := range m.missingRecession {
		if _, done := m.recession[s]; !done {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStockRepo) UpdateDividendMetrics(ctx context.Context, dm *contracts.DividendMetrics) error {
	m.dividendMetrics[dm.Symbol] = dm
	return nil
}

func (m *memStockRepo) UpdateRecessionPerformance(ctx context.Context, p *contracts.RecessionPerformance) error {
	if m.recessionUpdateErr != nil {
		return m.recessionUpdateErr
	}
	m.recession[p.Symbol] = p
	return nil
}

func (m *memStockRepo) UpdateProfile(ctx context.Context, symbol string, u *contracts.ProfileUpdate) error {
	return nil
}

type memDividendRepo struct {
	// events per symbol, stored ascending; GetBySymbol reverses
	events map[string][]contracts.DividendEvent
}

func (m *memDividendRepo) DistinctSymbols(ctx context.Context) ([]string, error) {
	var out []string
	for s := range m.events {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memDividendRepo) GetBySymbol(ctx context.Context, symbol string) ([]contracts.DividendEvent, error) {
	asc := m.events[symbol]
	desc := make([]contracts.DividendEvent, len(asc))
	for i, ev := range asc {
		desc[len(asc)-1-i] = ev
	}
	return desc, nil
}

func (m *memDividendRepo) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.DividendEvent, error) {
	var out []contracts.DividendEvent
	for _, ev := range m.events[symbol] {
		if !ev.Date.Before(from) && !ev.Date.After(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memDividendRepo) InsertBatch(ctx context.Context, events []contracts.DividendEvent) error {
	return nil
}

type memPriceRepo struct {
	bars map[string][]contracts.PriceBar // ascending
}

func (m *memPriceRepo) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (m *memPriceRepo) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceBar, error) {
	var out []contracts.PriceBar
	for _, b := range m.bars[symbol] {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memPriceRepo) InsertBatch(ctx context.Context, bars []contracts.PriceBar) error { return nil }

func testCache() *redis.Cache {
	client, _ := redis.New(&config.Config{})
	return redis.NewCache(client, "test")
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func div(symbol, date string, amount float64) contracts.DividendEvent {
	return contracts.DividendEvent{Symbol: symbol, Date: day(date), Amount: amount}
}

func bar(symbol, date string, adjClose float64) contracts.PriceBar {
	return contracts.PriceBar{Symbol: symbol, Date: day(date), AdjClose: adjClose}
}
