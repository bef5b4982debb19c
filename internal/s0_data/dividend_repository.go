package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/divradar/backend/internal/contracts"
)

// DividendRepository implements contracts.DividendRepository over the
// append-only dividends table
type DividendRepository struct {
	pool *pgxpool.Pool
}

// NewDividendRepository creates a new dividend repository
func NewDividendRepository(pool *pgxpool.Pool) *DividendRepository {
	return &DividendRepository{pool: pool}
}

// DistinctSymbols returns every symbol with at least one recorded event.
// The dividend engine iterates this set, not the full stock list.
func (r *DividendRepository) DistinctSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT symbol FROM dividends ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// GetBySymbol returns all events for a symbol, newest first
func (r *DividendRepository) GetBySymbol(ctx context.Context, symbol string) ([]contracts.DividendEvent, error) {
	query := `
		SELECT symbol, date, amount
		FROM dividends
		WHERE symbol = $1
		ORDER BY date DESC
	`
	return r.queryEvents(ctx, query, symbol)
}

// GetRange returns events in [from, to] ordered ascending by date
func (r *DividendRepository) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.DividendEvent, error) {
	query := `
		SELECT symbol, date, amount
		FROM dividends
		WHERE symbol = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`
	return r.queryEvents(ctx, query, symbol, from, to)
}

func (r *DividendRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]contracts.DividendEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []contracts.DividendEvent
	for rows.Next() {
		var e contracts.DividendEvent
		if err := rows.Scan(&e.Symbol, &e.Date, &e.Amount); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// InsertBatch inserts events inside one transaction, skipping rows whose
// (symbol, date) already exists
func (r *DividendRepository) InsertBatch(ctx context.Context, events []contracts.DividendEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO dividends (symbol, date, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, date) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		if _, err := tx.Exec(ctx, query, e.Symbol, e.Date, e.Amount); err != nil {
			return fmt.Errorf("insert dividend for %s: %w", e.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
