package contracts

import (
	"context"
	"time"
)

// Repository interfaces are defined here and implemented in s0_data.
// Engines depend on these so that tests can substitute fakes.

// StockRepository manages the mutable symbol master table
type StockRepository interface {
	// UpsertSnapshot writes current snapshot fields for a symbol,
	// inserting the row if it does not exist. Missing quote fields are
	// left untouched.
	UpsertSnapshot(ctx context.Context, quote *Quote) error

	// Delete removes a symbol that failed the viability gate
	Delete(ctx context.Context, symbol string) error

	// ListSymbols returns every tracked symbol
	ListSymbols(ctx context.Context) ([]string, error)

	// ListSymbolsMissingClassification returns symbols with NULL sector
	// or country, for the profile enricher
	ListSymbolsMissingClassification(ctx context.Context) ([]string, error)

	// ListSymbolsMissingRecessionReturn returns up to limit symbols whose
	// recession_return is still NULL. The recession engine pages over
	// this until it returns an empty slice.
	ListSymbolsMissingRecessionReturn(ctx context.Context, limit int) ([]string, error)

	// UpdateDividendMetrics overwrites the derived dividend fields
	UpdateDividendMetrics(ctx context.Context, m *DividendMetrics) error

	// UpdateRecessionPerformance overwrites the derived recession fields
	UpdateRecessionPerformance(ctx context.Context, p *RecessionPerformance) error

	// UpdateProfile writes classification ids and secondary financials
	UpdateProfile(ctx context.Context, symbol string, u *ProfileUpdate) error
}

// ProfileUpdate carries the enricher's output for one symbol.
// Nil fields are not written.
type ProfileUpdate struct {
	SectorID  *int
	CountryID *int

	Beta              *float64
	FreeCashflow      *float64
	OperatingCashflow *float64
	NetDebtToEBITDA   *float64
	NetDebtToCapital  *float64
	ROIC              *float64
}

// PriceRepository manages the append-only price history table
type PriceRepository interface {
	// LatestDate returns the most recent stored bar date for a symbol.
	// ok is false when no bars exist.
	LatestDate(ctx context.Context, symbol string) (date time.Time, ok bool, err error)

	// GetRange returns bars in [from, to] ordered ascending by date
	GetRange(ctx context.Context, symbol string, from, to time.Time) ([]PriceBar, error)

	// InsertBatch inserts bars, skipping (symbol, date) conflicts
	InsertBatch(ctx context.Context, bars []PriceBar) error
}

// DividendRepository manages the append-only dividend event table
type DividendRepository interface {
	// DistinctSymbols returns every symbol with at least one event
	DistinctSymbols(ctx context.Context) ([]string, error)

	// GetBySymbol returns all events for a symbol, date descending
	GetBySymbol(ctx context.Context, symbol string) ([]DividendEvent, error)

	// GetRange returns events in [from, to] ordered ascending by date
	GetRange(ctx context.Context, symbol string, from, to time.Time) ([]DividendEvent, error)

	// InsertBatch inserts events, skipping (symbol, date) conflicts
	InsertBatch(ctx context.Context, events []DividendEvent) error
}

// SplitRepository manages the append-only split event table
type SplitRepository interface {
	InsertBatch(ctx context.Context, splits []SplitEvent) error
}

// LookupTable is a growable classification table (sectors, countries).
// GetOrCreate returns the id for a name, inserting it on first sight.
// Implementations cache ids in memory for the run.
type LookupTable interface {
	// Preload bulk-reads the table into the in-memory cache
	Preload(ctx context.Context) error

	GetOrCreate(ctx context.Context, name string) (int, error)
}

// MarketDataProvider is the upstream fetch boundary
type MarketDataProvider interface {
	// FetchQuotes fetches bulk quotes; on partial provider failure it
	// returns whatever subset succeeded
	FetchQuotes(ctx context.Context, symbols []string) ([]Quote, error)

	// FetchHistory fetches bars and corporate-action events since a date
	FetchHistory(ctx context.Context, symbol string, since time.Time) (*History, error)

	// FetchProfile fetches classification and secondary financials
	FetchProfile(ctx context.Context, symbol string) (*Profile, error)
}
