// Package jobs wires the importers and engines into scheduler jobs.
// Each job builds its component per run so an interactive silent trigger
// can hand it a no-op logger without touching the scheduled runs.
package jobs

import (
	"context"

	"github.com/divradar/backend/internal/contracts"
	"github.com/divradar/backend/internal/scheduler"
	"github.com/divradar/backend/pkg/config"
	"github.com/divradar/backend/pkg/logger"
	"github.com/divradar/backend/pkg/redis"
)

// Deps bundles everything the jobs need
type Deps struct {
	Provider  contracts.MarketDataProvider
	Stocks    contracts.StockRepository
	Prices    contracts.PriceRepository
	Dividends contracts.DividendRepository
	Splits    contracts.SplitRepository
	Sectors   contracts.LookupTable
	Countries contracts.LookupTable
	Cache     *redis.Cache
	Config    *config.Config
	Logger    *logger.Logger
}

// runLogger picks the job's logger, honoring silent triggers
func (d *Deps) runLogger(ctx context.Context) *logger.Logger {
	if scheduler.IsSilent(ctx) {
		return logger.NewSilent()
	}
	return d.Logger
}

// All returns every job in registration order
func All(d *Deps) []scheduler.Job {
	return []scheduler.Job{
		NewSnapshotJob(d),
		NewHistoryJob(d),
		NewProfileJob(d),
		NewDividendMetricsJob(d),
		NewRecessionJob(d),
	}
}
