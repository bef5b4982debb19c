package jobs

import (
	"context"

	"github.com/divradar/backend/internal/s1_metrics"
)

// DividendMetricsJob recomputes growth, streak and cadence fields for
// every symbol with dividend history
type DividendMetricsJob struct {
	deps *Deps
}

// NewDividendMetricsJob creates the dividend metrics job
func NewDividendMetricsJob(d *Deps) *DividendMetricsJob {
	return &DividendMetricsJob{deps: d}
}

// Name returns the job name
func (j *DividendMetricsJob) Name() string {
	return "dividend_metrics"
}

// Schedule runs daily at 04:00 UTC, after history import has landed new
// events
func (j *DividendMetricsJob) Schedule() string {
	return "0 0 4 * * *"
}

// Run executes the dividend metrics calculation
func (j *DividendMetricsJob) Run(ctx context.Context) error {
	engine := s1_metrics.NewDividendEngine(
		j.deps.Dividends, j.deps.Stocks, j.deps.Cache, j.deps.runLogger(ctx),
	)
	_, err := engine.Run(ctx)
	return err
}

// RecessionJob backfills recession-window performance for symbols that
// do not have it yet. Cheap when nothing is missing: the first empty
// page ends the run.
type RecessionJob struct {
	deps *Deps
}

// NewRecessionJob creates the recession performance job
func NewRecessionJob(d *Deps) *RecessionJob {
	return &RecessionJob{deps: d}
}

// Name returns the job name
func (j *RecessionJob) Name() string {
	return "recession_performance"
}

// Schedule runs daily at 05:00 UTC, picking up newly imported symbols
func (j *RecessionJob) Schedule() string {
	return "0 0 5 * * *"
}

// Run executes the recession performance backfill
func (j *RecessionJob) Run(ctx context.Context) error {
	engine := s1_metrics.NewRecessionEngine(
		j.deps.Prices, j.deps.Dividends, j.deps.Stocks, j.deps.Cache,
		j.deps.Config.Jobs.RecessionPage, j.deps.runLogger(ctx),
	)
	_, err := engine.Run(ctx)
	return err
}
