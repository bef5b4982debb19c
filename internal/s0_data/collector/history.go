package collector

import (
	"context"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/logger"
)

// HistoryImporter fetches daily bars, dividends and splits per symbol,
// resuming from the latest stored bar date
type HistoryImporter struct {
	provider  contracts.MarketDataProvider
	prices    contracts.PriceRepository
	dividends contracts.DividendRepository
	splits    contracts.SplitRepository
	cfg       config.JobsConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewHistoryImporter creates a new history importer
func NewHistoryImporter(
	provider contracts.MarketDataProvider,
	prices contracts.PriceRepository,
	dividends contracts.DividendRepository,
	splits contracts.SplitRepository,
	cfg config.JobsConfig,
	log *logger.Logger,
) *HistoryImporter {
	return &HistoryImporter{
		provider:  provider,
		prices:    prices,
		dividends: dividends,
		splits:    splits,
		cfg:       cfg,
		logger:    log.WithField("module", "history_importer"),
		now:       time.Now,
	}
}

// HistoryResult summarizes one import run
type HistoryResult struct {
	Imported int
	Skipped  int
	Failed   int
}

// Run imports history for each symbol sequentially. Per-symbol failures
// are logged and counted; the run continues, and the inter-request delay
// applies after failures too so a run of errors cannot hammer the
// provider.
func (h *HistoryImporter) Run(ctx context.Context, symbols []string) (*HistoryResult, error) {
	h.logger.WithField("symbols", len(symbols)).Info("Starting history import")

	result := &HistoryResult{}
	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		start := time.Now()

		imported, err := h.importSymbol(ctx, symbol)
		switch {
		case err != nil:
			h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to import history")
			result.Failed++
		case imported:
			result.Imported++
		default:
			result.Skipped++
			// no request was made, no pause needed
			continue
		}

		if err := sleepRemaining(ctx, start, h.cfg.RequestDelay); err != nil {
			return result, err
		}
	}

	h.logger.WithFields(map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("History import completed")

	return result, nil
}

// importSymbol fetches and stores history for one symbol. Returns
// (false, nil) when the stored history is fresh enough to skip.
func (h *HistoryImporter) importSymbol(ctx context.Context, symbol string) (bool, error) {
	since := time.Unix(0, 0).UTC()

	latest, ok, err := h.prices.LatestDate(ctx, symbol)
	if err != nil {
		return false, err
	}
	if ok {
		if h.now().Sub(latest) < h.cfg.HistoryFreshness {
			h.logger.WithField("symbol", symbol).Debug("History fresh, skipping")
			return false, nil
		}
		since = latest.AddDate(0, 0, 1)
	}

	history, err := h.provider.FetchHistory(ctx, symbol, since)
	if err != nil {
		return false, err
	}

	for _, bars := range chunkBars(history.Bars, h.cfg.InsertBatchSize) {
		if err := h.prices.InsertBatch(ctx, bars); err != nil {
			return false, err
		}
	}
	for _, events := range chunkDividends(history.Dividends, h.cfg.InsertBatchSize) {
		if err := h.dividends.InsertBatch(ctx, events); err != nil {
			return false, err
		}
	}
	if err := h.splits.InsertBatch(ctx, history.Splits); err != nil {
		return false, err
	}

	h.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"bars":      len(history.Bars),
		"dividends": len(history.Dividends),
		"splits":    len(history.Splits),
		"since":     since.Format("2006-01-02"),
	}).Debug("Imported history")

	return true, nil
}

func chunkBars(bars []contracts.PriceBar, size int) [][]contracts.PriceBar {
	if size <= 0 || len(bars) == 0 {
		return nil
	}
	var chunks [][]contracts.PriceBar
	for start := 0; start < len(bars); start += size {
		end := start + size
		if end > len(bars) {
			end = len(bars)
		}
		chunks = append(chunks, bars[start:end])
	}
	return chunks
}

func chunkDividends(events []contracts.DividendEvent, size int) [][]contracts.DividendEvent {
	if size <= 0 || len(events) == 0 {
		return nil
	}
	var chunks [][]contracts.DividendEvent
	for start := 0; start < len(events); start += size {
		end := start + size
		if end > len(events) {
			end = len(events)
		}
		chunks = append(chunks, events[start:end])
	}
	return chunks
}
