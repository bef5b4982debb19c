package s1_metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

// The 2007-2009 stress window. Constants of the design, not tunable at
// call time; every stored recession figure refers to this exact range.
var (
	RecessionStart = time.Date(2007, time.October, 1, 0, 0, 0, 0, time.UTC)
	RecessionEnd   = time.Date(2009, time.June, 30, 0, 0, 0, 0, time.UTC)
)

// maintainedEpsilon bounds "first and last payment are equal" for the
// dividend status classification
const maintainedEpsilon = 1e-4

// RecessionEngine backfills total return and dividend behavior over the
// recession window for every symbol that does not have a value yet.
//
// The run pages over "recession_return IS NULL" rows. Every processed
// symbol ends with a non-NULL write, either a real return or the
// insufficient-data sentinel, so each page shrinks the remaining set and
// a crashed run resumes where it stopped with no checkpoint state.
type RecessionEngine struct {
	prices    contracts.PriceRepository
	dividends contracts.DividendRepository
	stocks    contracts.StockRepository
	cache     *redis.Cache
	pageSize  int
	logger    *logger.Logger
}

// NewRecessionEngine creates a new recession performance engine
func NewRecessionEngine(
	prices contracts.PriceRepository,
	dividends contracts.DividendRepository,
	stocks contracts.StockRepository,
	cache *redis.Cache,
	pageSize int,
	log *logger.Logger,
) *RecessionEngine {
	return &RecessionEngine{
		prices:    prices,
		dividends: dividends,
		stocks:    stocks,
		cache:     cache,
		pageSize:  pageSize,
		logger:    log.WithField("module", "recession_engine"),
	}
}

// RecessionRunResult summarizes one engine run
type RecessionRunResult struct {
	Processed    int
	Updated      int
	Insufficient int
	Failed       int
}

// Run pages over unprocessed symbols until none remain
func (e *RecessionEngine) Run(ctx context.Context) (*RecessionRunResult, error) {
	e.logger.WithFields(map[string]interface{}{
		"window_start": RecessionStart.Format("2006-01-02"),
		"window_end":   RecessionEnd.Format("2006-01-02"),
		"page_size":    e.pageSize,
	}).Info("Starting recession performance calculation")

	result := &RecessionRunResult{}
	for {
		symbols, err := e.stocks.ListSymbolsMissingRecessionReturn(ctx, e.pageSize)
		if err != nil {
			return result, fmt.Errorf("list unprocessed symbols: %w", err)
		}
		if len(symbols) == 0 {
			break
		}

		persisted := 0
		for _, symbol := range symbols {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			result.Processed++
			perf, err := e.computeSymbol(ctx, symbol)
			if err == nil {
				err = e.stocks.UpdateRecessionPerformance(ctx, perf)
			}
			if err != nil {
				e.logger.WithError(err).WithField("symbol", symbol).Error("Failed to process symbol")
				result.Failed++
				continue
			}

			persisted++
			if perf.Insufficient() {
				result.Insufficient++
				e.logger.WithField("symbol", symbol).Debug("Insufficient window data, marked with sentinel")
			} else {
				result.Updated++
				e.logger.WithFields(map[string]interface{}{
					"symbol": symbol,
					"return": perf.TotalReturn,
					"status": string(perf.DividendStatus),
				}).Debug("Updated recession performance")
			}
		}

		// A page where nothing persisted would reselect the same symbols
		// forever; abort instead of spinning
		if persisted == 0 {
			return result, fmt.Errorf("no progress on page of %d symbols, aborting", len(symbols))
		}
	}

	if err := e.cache.InvalidatePrefix(ctx, redis.StocksKeyPrefix); err != nil {
		e.logger.WithError(err).Warn("Failed to invalidate stocks cache")
	}

	e.logger.WithFields(map[string]interface{}{
		"processed":    result.Processed,
		"updated":      result.Updated,
		"insufficient": result.Insufficient,
		"failed":       result.Failed,
	}).Info("Recession performance calculation completed")

	return result, nil
}

func (e *RecessionEngine) computeSymbol(ctx context.Context, symbol string) (*contracts.RecessionPerformance, error) {
	bars, err := e.prices.GetRange(ctx, symbol, RecessionStart, RecessionEnd)
	if err != nil {
		return nil, err
	}

	// Only symbols with window price coverage need the dividend fetch
	var divs []contracts.DividendEvent
	if len(bars) >= 2 {
		divs, err = e.dividends.GetRange(ctx, symbol, RecessionStart, RecessionEnd)
		if err != nil {
			return nil, err
		}
	}

	perf := ComputeRecessionPerformance(symbol, bars, divs)
	return &perf, nil
}

// ComputeRecessionPerformance derives the window return and dividend
// status from bars and dividend events, both ordered ascending by date.
//
// Fewer than two bars yields the insufficient-data sentinel. The return
// uses adjusted closes, which already fold splits and dividends into the
// price series, so no separate dividend cash flow is added.
func ComputeRecessionPerformance(symbol string, bars []contracts.PriceBar, divs []contracts.DividendEvent) contracts.RecessionPerformance {
	if len(bars) < 2 {
		return contracts.RecessionPerformance{
			Symbol:         symbol,
			TotalReturn:    contracts.InsufficientDataReturn,
			DividendStatus: contracts.StatusNoData,
		}
	}

	startPrice := bars[0].AdjClose
	endPrice := bars[len(bars)-1].AdjClose

	return contracts.RecessionPerformance{
		Symbol:         symbol,
		TotalReturn:    (endPrice - startPrice) / startPrice * 100,
		DividendStatus: classifyDividends(divs),
	}
}

// classifyDividends inspects the window's payments in chronological
// order. Any payment strictly below its predecessor is a cut; this
// compares adjacent payments, not same-month payments year over year, so
// irregular payers can be flagged on timing variation alone. Known
// limitation, kept for continuity of stored classifications.
func classifyDividends(divs []contracts.DividendEvent) contracts.DividendStatus {
	if len(divs) == 0 {
		return contracts.StatusNoData
	}

	for i := 1; i < len(divs); i++ {
		if divs[i].Amount < divs[i-1].Amount {
			return contracts.StatusCut
		}
	}

	first := divs[0].Amount
	last := divs[len(divs)-1].Amount
	switch {
	case last > first && math.Abs(last-first) > maintainedEpsilon:
		return contracts.StatusIncreased
	default:
		return contracts.StatusMaintained
	}
}
