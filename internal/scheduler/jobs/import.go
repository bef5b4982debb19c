package jobs

import (
	"context"
	"fmt"

	"github.com/divradar/backend/internal/s0_data/collector"
)

// SnapshotJob refreshes bulk quote snapshots for the whole universe
type SnapshotJob struct {
	deps *Deps
}

// NewSnapshotJob creates the snapshot refresh job
func NewSnapshotJob(d *Deps) *SnapshotJob {
	return &SnapshotJob{deps: d}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "snapshot_refresh"
}

// Schedule runs after the US close, weekdays at 22:30 UTC
func (j *SnapshotJob) Schedule() string {
	return "0 30 22 * * 1-5"
}

// Run executes the snapshot refresh
func (j *SnapshotJob) Run(ctx context.Context) error {
	symbols, err := j.deps.Stocks.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	imp := collector.NewSnapshotImporter(
		j.deps.Provider, j.deps.Stocks, j.deps.Cache,
		j.deps.Config.Jobs, j.deps.runLogger(ctx),
	)
	_, err = imp.Run(ctx, symbols)
	return err
}

// HistoryJob imports price bars, dividends and splits per symbol
type HistoryJob struct {
	deps *Deps
}

// NewHistoryJob creates the history import job
func NewHistoryJob(d *Deps) *HistoryJob {
	return &HistoryJob{deps: d}
}

// Name returns the job name
func (j *HistoryJob) Name() string {
	return "history_import"
}

// Schedule runs daily at 01:00 UTC
func (j *HistoryJob) Schedule() string {
	return "0 0 1 * * *"
}

// Run executes the history import
func (j *HistoryJob) Run(ctx context.Context) error {
	symbols, err := j.deps.Stocks.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	imp := collector.NewHistoryImporter(
		j.deps.Provider, j.deps.Prices, j.deps.Dividends, j.deps.Splits,
		j.deps.Config.Jobs, j.deps.runLogger(ctx),
	)
	_, err = imp.Run(ctx, symbols)
	return err
}

// ProfileJob enriches symbols missing sector/country classification
type ProfileJob struct {
	deps *Deps
}

// NewProfileJob creates the profile enrichment job
func NewProfileJob(d *Deps) *ProfileJob {
	return &ProfileJob{deps: d}
}

// Name returns the job name
func (j *ProfileJob) Name() string {
	return "profile_enrichment"
}

// Schedule runs daily at 02:30 UTC, after the history import
func (j *ProfileJob) Schedule() string {
	return "0 30 2 * * *"
}

// Run executes the profile enrichment
func (j *ProfileJob) Run(ctx context.Context) error {
	enricher := collector.NewProfileEnricher(
		j.deps.Provider, j.deps.Stocks, j.deps.Sectors, j.deps.Countries,
		j.deps.Config.Jobs, j.deps.runLogger(ctx),
	)
	_, err := enricher.Run(ctx)
	return err
}
