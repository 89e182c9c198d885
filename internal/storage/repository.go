package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galaksio/quote-engine/internal/engine"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const (
	insertComparisonSQL = `INSERT INTO comparison_history (
        category,
        spec,
        best_provider,
        best_price_usd,
        currency,
        billing_period,
        quote_count,
        quotes
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    )
    RETURNING id, created_at;`

	listRecentComparisonsSQL = `SELECT
        id,
        category,
        spec,
        best_provider,
        best_price_usd,
        currency,
        billing_period,
        quote_count,
        quotes,
        created_at
    FROM comparison_history
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteComparisonsBeforeSQL = `DELETE FROM comparison_history WHERE created_at < $1;`
)

// HistoryStore persists comparison outcomes.
type HistoryStore interface {
	InsertComparison(ctx context.Context, cmp *engine.Comparison) (int64, error)
	ListRecentComparisons(ctx context.Context, limit int) ([]ComparisonRecord, error)
	DeleteComparisonsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the PostgreSQL-backed history store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an initialised pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertComparison appends one comparison outcome to the history log.
func (s *Store) InsertComparison(ctx context.Context, cmp *engine.Comparison) (int64, error) {
	if s.pool == nil {
		return 0, ErrNotConfigured
	}

	spec, err := json.Marshal(cmp.Spec)
	if err != nil {
		return 0, fmt.Errorf("marshal spec: %w", err)
	}
	quotes, err := json.Marshal(cmp.Quotes)
	if err != nil {
		return 0, fmt.Errorf("marshal quotes: %w", err)
	}

	best := cmp.BestOffer

	var id int64
	var createdAt time.Time
	err = s.pool.QueryRow(ctx, insertComparisonSQL,
		string(best.Category),
		spec,
		best.Provider,
		best.PriceUSD,
		best.Currency,
		best.BillingPeriod,
		len(cmp.Quotes),
		quotes,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, fmt.Errorf("insert comparison: %w", err)
	}

	return id, nil
}

// ListRecentComparisons returns the newest history entries first.
func (s *Store) ListRecentComparisons(ctx context.Context, limit int) ([]ComparisonRecord, error) {
	if s.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.pool.Query(ctx, listRecentComparisonsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	defer rows.Close()

	var records []ComparisonRecord
	for rows.Next() {
		var rec ComparisonRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Category,
			&rec.Spec,
			&rec.BestProvider,
			&rec.BestPriceUSD,
			&rec.Currency,
			&rec.BillingPeriod,
			&rec.QuoteCount,
			&rec.Quotes,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// DeleteComparisonsBefore purges history entries older than the cutoff.
func (s *Store) DeleteComparisonsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.pool == nil {
		return 0, ErrNotConfigured
	}

	tag, err := s.pool.Exec(ctx, deleteComparisonsBeforeSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete comparisons: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ HistoryStore = (*Store)(nil)
