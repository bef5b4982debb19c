package contracts

import "time"

// PaymentFrequency is the inferred dividend payment cadence.
// Values match the payment_frequency enum in the stocks table.
type PaymentFrequency string

const (
	FrequencyMonthly    PaymentFrequency = "monthly"
	FrequencyQuarterly  PaymentFrequency = "quarterly"
	FrequencySemiAnnual PaymentFrequency = "semi_annual"
	FrequencyAnnual     PaymentFrequency = "annual"
	FrequencyUnknown    PaymentFrequency = "" // no payments observed
)

// DividendStatus classifies dividend behavior over the recession window
type DividendStatus string

const (
	StatusCut        DividendStatus = "cut"
	StatusMaintained DividendStatus = "maintained"
	StatusIncreased  DividendStatus = "increased"
	StatusNoData     DividendStatus = "no_data"
)

// InsufficientDataReturn marks a symbol that has too little price history
// in the recession window to compute a return. It is out of any plausible
// return range on purpose: writing it removes the symbol from the
// "recession_return IS NULL" backfill page, so the symbol is never retried.
const InsufficientDataReturn = -9999.0

// DividendMetrics holds the derived per-symbol dividend fields.
// Growth rates are nil when not enough annual history exists.
type DividendMetrics struct {
	Symbol string

	Growth1Year  *float64
	Growth5Year  *float64
	Growth10Year *float64

	GrowthStreak        int
	UninterruptedStreak int
	LatestRaiseDate     *time.Time

	PaymentFrequency      PaymentFrequency
	PaymentScheduleMonths string // e.g. "Mar, Jun, Sep, Dec"

	AnnualTotals map[int]float64 // year -> summed amount, persisted as JSONB
}

// RecessionPerformance holds the derived recession-window fields
type RecessionPerformance struct {
	Symbol         string
	TotalReturn    float64 // percent; InsufficientDataReturn when unresolvable
	DividendStatus DividendStatus
}

// Insufficient reports whether this result is the no-coverage sentinel
func (r *RecessionPerformance) Insufficient() bool {
	return r.TotalReturn == InsufficientDataReturn
}
