package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/divradar/backend/internal/contracts"
)

// SplitRepository implements contracts.SplitRepository over the
// append-only splits table
type SplitRepository struct {
	pool *pgxpool.Pool
}

// NewSplitRepository creates a new split repository
func NewSplitRepository(pool *pgxpool.Pool) *SplitRepository {
	return &SplitRepository{pool: pool}
}

// InsertBatch inserts splits inside one transaction, skipping rows whose
// (symbol, date) already exists
func (r *SplitRepository) InsertBatch(ctx context.Context, splits []contracts.SplitEvent) error {
	if len(splits) == 0 {
		return nil
	}

	query := `
		INSERT INTO splits (symbol, date, numerator, denominator)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range splits {
		if _, err := tx.Exec(ctx, query, s.Symbol, s.Date, s.Numerator, s.Denominator); err != nil {
			return fmt.Errorf("insert split for %s: %w", s.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
