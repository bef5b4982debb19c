package contracts

import "time"

// Quote represents a bulk-quote snapshot record from the market-data
// provider. Optional fields are pointers; the importer skips missing
// values instead of overwriting stored data with zeros.
type Quote struct {
	Symbol    string
	ShortName string
	LongName  string
	Currency  string
	Exchange  string

	// Price / volume
	Price                *float64
	PreviousClose        *float64
	Volume               *int64
	AvgVolume90Day       *int64
	MarketCap            *int64
	FiftyTwoWeekHigh     *float64
	FiftyTwoWeekLow      *float64
	FiftyDayAverage      *float64
	TwoHundredDayAverage *float64

	// Dividend data
	DividendRate                *float64
	DividendYield               *float64
	ExDividendDate              *time.Time
	DividendDate                *time.Time
	PayoutRatio                 *float64
	FiveYearAvgDividendYield    *float64
	TrailingAnnualDividendRate  *float64
	TrailingAnnualDividendYield *float64

	// Valuation
	TrailingPE   *float64
	ForwardPE    *float64
	PriceToBook  *float64
	PriceToSales *float64

	// Earnings
	TrailingEPS             *float64
	ForwardEPS              *float64
	EarningsGrowth          *float64
	EarningsQuarterlyGrowth *float64
	EarningsTimestamp       *time.Time

	// Financial health
	ProfitMargins     *float64
	GrossMargins      *float64
	OperatingMargins  *float64
	FreeCashflow      *int64
	OperatingCashflow *int64
	ReturnOnAssets    *float64
	ReturnOnEquity    *float64
	DebtToEquity      *float64
	CurrentRatio      *float64
	QuickRatio        *float64

	// Analyst data
	RecommendationKey       string
	RecommendationMean      *float64
	TargetMeanPrice         *float64
	TargetMedianPrice       *float64
	NumberOfAnalystOpinions *int
}

// DollarVolume returns price * volume, or 0 when either is missing.
// Used by the snapshot viability gate.
func (q *Quote) DollarVolume() float64 {
	if q.Price == nil || q.Volume == nil {
		return 0
	}
	return *q.Price * float64(*q.Volume)
}

// Profile represents classification and secondary financial data from the
// provider's quoteSummary endpoint (assetProfile + financialData modules).
type Profile struct {
	Sector  string
	Country string

	Beta              *float64
	FreeCashflow      *float64
	OperatingCashflow *float64
	EBITDA            *float64
	TotalCash         *float64
	TotalDebt         *float64
	DebtToEquity      *float64 // percent, as reported by the provider
	TotalRevenue      *float64
	OperatingMargins  *float64
	ProfitMargins     *float64
	EffectiveTaxRate  *float64
}

// PriceBar is a daily price history bar. Close is the split/dividend
// adjusted close; the return calculation in the recession engine relies
// on that adjustment.
type PriceBar struct {
	Symbol   string
	Date     time.Time
	AdjClose float64
	Volume   int64
}

// DividendEvent is one historical cash distribution
type DividendEvent struct {
	Symbol string
	Date   time.Time
	Amount float64
}

// SplitEvent is one stock split
type SplitEvent struct {
	Symbol      string
	Date        time.Time
	Numerator   int
	Denominator int
}

// History bundles everything the chart endpoint returns for one symbol
type History struct {
	Symbol    string
	Bars      []PriceBar
	Dividends []DividendEvent
	Splits    []SplitEvent
}
