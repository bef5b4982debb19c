package s0_data

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LookupRepository implements contracts.LookupTable for the small
// classification tables (sectors, countries). Ids are cached in memory;
// the tables only ever grow, so a cached id never goes stale.
type LookupRepository struct {
	pool  *pgxpool.Pool
	table string

	mu    sync.Mutex
	cache map[string]int
}

// NewSectorRepository creates a lookup repository over the sectors table
func NewSectorRepository(pool *pgxpool.Pool) *LookupRepository {
	return newLookupRepository(pool, "sectors")
}

// NewCountryRepository creates a lookup repository over the countries table
func NewCountryRepository(pool *pgxpool.Pool) *LookupRepository {
	return newLookupRepository(pool, "countries")
}

func newLookupRepository(pool *pgxpool.Pool, table string) *LookupRepository {
	return &LookupRepository{
		pool:  pool,
		table: table,
		cache: make(map[string]int),
	}
}

// Preload reads the whole table into the cache. Called once at the
// start of an enrichment run so established names never hit the
// database again.
func (r *LookupRepository) Preload(ctx context.Context) error {
	query := fmt.Sprintf(`SELECT id, name FROM %s`, r.table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("preload %s: %w", r.table, err)
	}
	defer rows.Close()

	entries := make(map[string]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scan %s row: %w", r.table, err)
		}
		entries[name] = id
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read %s rows: %w", r.table, err)
	}

	r.Seed(entries)
	return nil
}

// GetOrCreate returns the id for a name, inserting the row on first
// sight. Concurrent inserts of the same name resolve through the
// ON CONFLICT re-select.
func (r *LookupRepository) GetOrCreate(ctx context.Context, name string) (int, error) {
	r.mu.Lock()
	if id, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	// DO UPDATE instead of DO NOTHING so RETURNING yields the id on
	// conflict as well
	query := fmt.Sprintf(`
		INSERT INTO %s (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, r.table)

	var id int
	if err := r.pool.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("get or create %s %q: %w", r.table, name, err)
	}

	r.mu.Lock()
	r.cache[name] = id
	r.mu.Unlock()
	return id, nil
}

// Seed inserts cache entries directly.
func (r *LookupRepository) Seed(entries map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, id := range entries {
		r.cache[name] = id
	}
}
