package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/divradar/backend/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository over the
// append-only stock_history table
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// LatestDate returns the most recent stored bar date for a symbol.
// ok is false when no bars exist; the history importer then fetches the
// full range instead of resuming.
func (r *PriceRepository) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	query := `
		SELECT date FROM stock_history
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var date time.Time
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&date)
	if err == pgx.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return date, true, nil
}

// GetRange returns bars in [from, to] ordered ascending by date
func (r *PriceRepository) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceBar, error) {
	query := `
		SELECT symbol, date, adj_close, volume
		FROM stock_history
		WHERE symbol = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.PriceBar
	for rows.Next() {
		var b contracts.PriceBar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.AdjClose, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// InsertBatch inserts bars inside one transaction, skipping rows whose
// (symbol, date) already exists. History rows are never updated in place.
func (r *PriceRepository) InsertBatch(ctx context.Context, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO stock_history (symbol, date, adj_close, volume)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range bars {
		if _, err := tx.Exec(ctx, query, b.Symbol, b.Date, b.AdjClose, b.Volume); err != nil {
			return fmt.Errorf("insert bar for %s: %w", b.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
