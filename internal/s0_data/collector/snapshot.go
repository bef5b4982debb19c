package collector

import (
	"context"
	"time"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

// SnapshotImporter refreshes current quote fields for the tracked
// universe via the provider's bulk quote endpoint
type SnapshotImporter struct {
	provider contracts.MarketDataProvider
	stocks   contracts.StockRepository
	cache    *redis.Cache
	cfg      config.JobsConfig
	logger   *logger.Logger
}

// NewSnapshotImporter creates a new snapshot importer
func NewSnapshotImporter(
	provider contracts.MarketDataProvider,
	stocks contracts.StockRepository,
	cache *redis.Cache,
	cfg config.JobsConfig,
	log *logger.Logger,
) *SnapshotImporter {
	return &SnapshotImporter{
		provider: provider,
		stocks:   stocks,
		cache:    cache,
		cfg:      cfg,
		logger:   log.WithField("module", "snapshot_importer"),
	}
}

// SnapshotResult summarizes one import run
type SnapshotResult struct {
	Updated int
	Removed int
	Failed  int
}

// Run refreshes every given symbol. Batches that fail entirely are
// logged and skipped; the run continues with the next batch.
func (s *SnapshotImporter) Run(ctx context.Context, symbols []string) (*SnapshotResult, error) {
	batches := Batch(symbols, s.cfg.QuoteBatchSize)

	s.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"batches": len(batches),
	}).Info("Starting snapshot import")

	result := &SnapshotResult{}
	for i, batch := range batches {
		start := time.Now()

		quotes, err := s.provider.FetchQuotes(ctx, batch)
		if err != nil {
			s.logger.WithError(err).WithField("batch", i).Error("Failed to fetch quote batch")
			result.Failed += len(batch)
			if err := sleepRemaining(ctx, start, s.cfg.RequestDelay); err != nil {
				return result, err
			}
			continue
		}

		// Symbols the provider returned nothing for count as failed,
		// not removed: absence of a quote is not evidence of death
		returned := make(map[string]bool, len(quotes))
		for j := range quotes {
			q := &quotes[j]
			returned[q.Symbol] = true

			if !Viable(q, s.cfg.MinDollarVolume, s.cfg.MinMarketCap) {
				if err := s.stocks.Delete(ctx, q.Symbol); err != nil {
					s.logger.WithError(err).WithField("symbol", q.Symbol).Error("Failed to remove symbol")
					result.Failed++
					continue
				}
				s.logger.WithField("symbol", q.Symbol).Info("Removed symbol below viability floor")
				result.Removed++
				continue
			}

			if err := s.stocks.UpsertSnapshot(ctx, q); err != nil {
				s.logger.WithError(err).WithField("symbol", q.Symbol).Error("Failed to upsert snapshot")
				result.Failed++
				continue
			}
			result.Updated++
		}
		for _, sym := range batch {
			if !returned[sym] {
				result.Failed++
			}
		}

		if i < len(batches)-1 {
			if err := sleepRemaining(ctx, start, s.cfg.RequestDelay); err != nil {
				return result, err
			}
		}
	}

	if err := s.cache.InvalidatePrefix(ctx, redis.StocksKeyPrefix); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate stocks cache")
	}

	s.logger.WithFields(map[string]interface{}{
		"updated": result.Updated,
		"removed": result.Removed,
		"failed":  result.Failed,
	}).Info("Snapshot import completed")

	return result, nil
}

// Viable reports whether a quote describes a stock worth tracking:
// identity fields present, a tradeable price and volume, and dollar
// volume and market cap above the configured floors. Failing quotes get
// their stored row removed.
func Viable(q *contracts.Quote, minDollarVolume float64, minMarketCap int64) bool {
	if q.Symbol == "" {
		return false
	}
	if q.ShortName == "" && q.LongName == "" {
		return false
	}
	if q.Price == nil || q.Volume == nil {
		return false
	}
	if q.DollarVolume() < minDollarVolume {
		return false
	}
	if q.MarketCap == nil || *q.MarketCap < minMarketCap {
		return false
	}
	return true
}
