package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd prints a one-shot snapshot of data coverage
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data coverage status",
	Long: `Prints row counts and derived-field coverage from the database.

Example:
  go run ./cmd/divradar status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts := []struct {
		label string
		query string
	}{
		{"Tracked symbols", `SELECT COUNT(*) FROM stocks`},
		{"Price bars", `SELECT COUNT(*) FROM stock_history`},
		{"Dividend events", `SELECT COUNT(*) FROM dividends`},
		{"Split events", `SELECT COUNT(*) FROM splits`},
		{"Missing classification", `SELECT COUNT(*) FROM stocks WHERE sector_id IS NULL OR country_id IS NULL`},
		{"Missing dividend metrics", `SELECT COUNT(*) FROM stocks WHERE payment_frequency IS NULL`},
		{"Missing recession return", `SELECT COUNT(*) FROM stocks WHERE recession_return IS NULL`},
	}

	fmt.Println("divradar data status")
	fmt.Println("----------------------------------------")
	for _, c := range counts {
		var n int64
		if err := a.db.Pool.QueryRow(ctx, c.query).Scan(&n); err != nil {
			return fmt.Errorf("%s: %w", c.label, err)
		}
		fmt.Printf("%-26s %10d\n", c.label, n)
	}

	stats := a.db.Stats()
	fmt.Println("----------------------------------------")
	fmt.Printf("%-26s %7d/%d\n", "DB connections", stats.TotalConns, stats.MaxConns)

	return nil
}
