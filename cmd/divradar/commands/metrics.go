package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divradar/backend/internal/s1_metrics"
)

// metricsCmd groups the derived-metrics engines
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Run derived-metrics engines",
	Long: `Runs one of the metrics engines once and exits.

Subcommands:
  dividends  - growth rates, streaks, raise date, payment cadence
  recession  - 2007-2009 window total return and dividend behavior
  all        - run both engines in order

Example:
  go run ./cmd/divradar metrics dividends
  go run ./cmd/divradar metrics recession --silent`,
}

func runDividendMetrics(ctx context.Context, a *app) error {
	engine := s1_metrics.NewDividendEngine(
		a.deps.Dividends, a.deps.Stocks, a.deps.Cache, a.jobLogger(),
	)
	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Dividend metrics: %d succeeded, %d failed\n",
		result.Succeeded, result.Failed)
	return nil
}

func runRecessionMetrics(ctx context.Context, a *app) error {
	engine := s1_metrics.NewRecessionEngine(
		a.deps.Prices, a.deps.Dividends, a.deps.Stocks, a.deps.Cache,
		a.cfg.Jobs.RecessionPage, a.jobLogger(),
	)
	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Recession performance: %d processed, %d updated, %d insufficient, %d failed\n",
		result.Processed, result.Updated, result.Insufficient, result.Failed)
	return nil
}

var metricsDividendsCmd = &cobra.Command{
	Use:   "dividends",
	Short: "Compute dividend growth metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runDividendMetrics(context.Background(), a)
	},
}

var metricsRecessionCmd = &cobra.Command{
	Use:   "recession",
	Short: "Compute recession-window performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runRecessionMetrics(context.Background(), a)
	},
}

var metricsAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run both metrics engines in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		if err := runDividendMetrics(ctx, a); err != nil {
			return fmt.Errorf("dividend metrics: %w", err)
		}
		if err := runRecessionMetrics(ctx, a); err != nil {
			return fmt.Errorf("recession performance: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(metricsDividendsCmd)
	metricsCmd.AddCommand(metricsRecessionCmd)
	metricsCmd.AddCommand(metricsAllCmd)
}
