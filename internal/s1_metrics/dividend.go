package s1_metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

// DividendEngine computes per-symbol dividend growth, streaks and payment
// cadence from the recorded dividend events and persists them onto the
// stock row
type DividendEngine struct {
	dividends contracts.DividendRepository
	stocks    contracts.StockRepository
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewDividendEngine creates a new dividend metrics engine
func NewDividendEngine(
	dividends contracts.DividendRepository,
	stocks contracts.StockRepository,
	cache *redis.Cache,
	log *logger.Logger,
) *DividendEngine {
	return &DividendEngine{
		dividends: dividends,
		stocks:    stocks,
		cache:     cache,
		logger:    log.WithField("module", "dividend_engine"),
	}
}

// DividendRunResult summarizes one engine run
type DividendRunResult struct {
	Succeeded int
	Failed    int
}

// Run computes metrics for every symbol with at least one dividend event.
// Per-symbol failures are logged and counted without aborting the run;
// only the initial symbol scan is fatal.
func (e *DividendEngine) Run(ctx context.Context) (*DividendRunResult, error) {
	symbols, err := e.dividends.DistinctSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dividend symbols: %w", err)
	}

	e.logger.WithField("symbols", len(symbols)).Info("Starting dividend metrics calculation")

	result := &DividendRunResult{}
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := e.processSymbol(ctx, symbol); err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Error("Failed to process symbol")
			result.Failed++
			continue
		}
		result.Succeeded++
	}

	if err := e.cache.InvalidatePrefix(ctx, redis.StocksKeyPrefix); err != nil {
		e.logger.WithError(err).Warn("Failed to invalidate stocks cache")
	}

	e.logger.WithFields(map[string]interface{}{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Dividend metrics calculation completed")

	return result, nil
}

func (e *DividendEngine) processSymbol(ctx context.Context, symbol string) error {
	events, err := e.dividends.GetBySymbol(ctx, symbol)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	metrics := ComputeDividendMetrics(symbol, events)
	if err := e.stocks.UpdateDividendMetrics(ctx, metrics); err != nil {
		return err
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"streak": metrics.GrowthStreak,
	}).Debug("Updated dividend metrics")

	return nil
}

// ComputeDividendMetrics derives all dividend fields for one symbol from
// its events, which must be ordered by date descending. Amounts are
// grouped into calendar-year totals; fiscal-year alignment is not
// attempted. The result is deterministic for a given event set, so
// re-running with unchanged events overwrites fields with identical
// values.
func ComputeDividendMetrics(symbol string, events []contracts.DividendEvent) *contracts.DividendMetrics {
	annualTotals := make(map[int]float64)
	months := make(map[time.Month]bool)

	for _, ev := range events {
		annualTotals[ev.Date.Year()] += ev.Amount
		months[ev.Date.Month()] = true
	}

	years := make([]int, 0, len(annualTotals))
	for y := range annualTotals {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	m := &contracts.DividendMetrics{
		Symbol:       symbol,
		AnnualTotals: annualTotals,
	}

	// Growth rates against 1, 5 and 10 years back; nil unless the back
	// year exists with a positive total
	if len(years) >= 2 {
		if prev := annualTotals[years[1]]; prev > 0 {
			g := (annualTotals[years[0]] - prev) / prev
			m.Growth1Year = &g
		}
	}
	if len(years) >= 6 {
		if base := annualTotals[years[5]]; base > 0 {
			g := math.Pow(annualTotals[years[0]]/base, 1.0/5) - 1
			m.Growth5Year = &g
		}
	}
	if len(years) >= 11 {
		if base := annualTotals[years[10]]; base > 0 {
			g := math.Pow(annualTotals[years[0]]/base, 1.0/10) - 1
			m.Growth10Year = &g
		}
	}

	// Streaks scan year-over-year transitions from the most recent year
	// backward. The growth streak counts strict increases and only
	// advances while unbroken from the top; the uninterrupted streak
	// tolerates a 1% dip for rounding and stops at the first real cut.
	for i := 0; i < len(years)-1; i++ {
		thisYear := annualTotals[years[i]]
		lastYear := annualTotals[years[i+1]]

		if thisYear > lastYear && m.GrowthStreak == i {
			m.GrowthStreak++
			if i == 0 {
				if d := firstEventInYear(events, years[0]); d != nil {
					m.LatestRaiseDate = d
				}
			}
		}

		if thisYear >= lastYear*0.99 {
			if m.UninterruptedStreak == i {
				m.UninterruptedStreak++
			}
		} else {
			break
		}
	}

	m.PaymentFrequency = inferFrequency(len(months))
	m.PaymentScheduleMonths = scheduleMonths(months)

	return m
}

// firstEventInYear returns the date of the first event in iteration order
// that falls in the given year. With descending input that is the year's
// most recent payment, which is the one that carried the raise.
func firstEventInYear(events []contracts.DividendEvent, year int) *time.Time {
	for _, ev := range events {
		if ev.Date.Year() == year {
			d := ev.Date
			return &d
		}
	}
	return nil
}

// inferFrequency maps the count of distinct payment months to a cadence.
// The thresholds are deliberately loose: a quarterly payer that shifted
// its schedule once still shows only 4-6 distinct months.
func inferFrequency(distinctMonths int) contracts.PaymentFrequency {
	switch {
	case distinctMonths >= 10:
		return contracts.FrequencyMonthly
	case distinctMonths >= 3:
		return contracts.FrequencyQuarterly
	case distinctMonths >= 2:
		return contracts.FrequencySemiAnnual
	case distinctMonths >= 1:
		return contracts.FrequencyAnnual
	default:
		return contracts.FrequencyUnknown
	}
}

// scheduleMonths renders the distinct payment months ascending as
// "Jan, Apr, Jul, Oct"
func scheduleMonths(months map[time.Month]bool) string {
	if len(months) == 0 {
		return ""
	}

	sorted := make([]int, 0, len(months))
	for mo := range months {
		sorted = append(sorted, int(mo))
	}
	sort.Ints(sorted)

	names := make([]string, len(sorted))
	for i, mo := range sorted {
		names[i] = time.Month(mo).String()[:3]
	}
	return strings.Join(names, ", ")
}
