package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divradar/backend/internal/s0_data/collector"
)

// importCmd groups the data importers
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run data importers",
	Long: `Runs one of the data importers once and exits.

Subcommands:
  snapshot  - refresh bulk quote snapshots for all tracked symbols
  history   - import price bars, dividends and splits per symbol
  profile   - fill in sector/country and secondary financial ratios
  all       - run snapshot, history and profile in order

Example:
  go run ./cmd/divradar import snapshot
  go run ./cmd/divradar import history --silent`,
}

func runSnapshotImport(ctx context.Context, a *app) error {
	symbols, err := a.deps.Stocks.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	imp := collector.NewSnapshotImporter(
		a.deps.Provider, a.deps.Stocks, a.deps.Cache, a.cfg.Jobs, a.jobLogger(),
	)
	result, err := imp.Run(ctx, symbols)
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot import: %d updated, %d removed, %d failed\n",
		result.Updated, result.Removed, result.Failed)
	return nil
}

func runHistoryImport(ctx context.Context, a *app) error {
	symbols, err := a.deps.Stocks.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	imp := collector.NewHistoryImporter(
		a.deps.Provider, a.deps.Prices, a.deps.Dividends, a.deps.Splits,
		a.cfg.Jobs, a.jobLogger(),
	)
	result, err := imp.Run(ctx, symbols)
	if err != nil {
		return err
	}

	fmt.Printf("History import: %d imported, %d skipped, %d failed\n",
		result.Imported, result.Skipped, result.Failed)
	return nil
}

func runProfileEnrichment(ctx context.Context, a *app) error {
	enricher := collector.NewProfileEnricher(
		a.deps.Provider, a.deps.Stocks, a.deps.Sectors, a.deps.Countries,
		a.cfg.Jobs, a.jobLogger(),
	)
	result, err := enricher.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Profile enrichment: %d enriched, %d failed\n",
		result.Enriched, result.Failed)
	return nil
}

var importSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Refresh quote snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runSnapshotImport(context.Background(), a)
	},
}

var importHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Import price and dividend history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runHistoryImport(context.Background(), a)
	},
}

var importProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Enrich profiles and classification",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runProfileEnrichment(context.Background(), a)
	},
}

var importAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run all importers in pipeline order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		if err := runSnapshotImport(ctx, a); err != nil {
			return fmt.Errorf("snapshot import: %w", err)
		}
		if err := runHistoryImport(ctx, a); err != nil {
			return fmt.Errorf("history import: %w", err)
		}
		if err := runProfileEnrichment(ctx, a); err != nil {
			return fmt.Errorf("profile enrichment: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importSnapshotCmd)
	importCmd.AddCommand(importHistoryCmd)
	importCmd.AddCommand(importProfileCmd)
	importCmd.AddCommand(importAllCmd)
}
