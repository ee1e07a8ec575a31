package repository

import (
	"context"
	"fmt"

	"github.com/epeers/bondrisk/internal/analytics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BondRepository handles database operations for bond reference data
type BondRepository struct {
	pool *pgxpool.Pool
}

// NewBondRepository creates a new BondRepository
func NewBondRepository(pool *pgxpool.Pool) *BondRepository {
	return &BondRepository{pool: pool}
}

// GetMultipleByISIN returns the bonds found for the given ISINs, keyed by ISIN.
// ISINs with no row are simply absent from the result.
func (r *BondRepository) GetMultipleByISIN(ctx context.Context, isins []string) (map[string]*analytics.Bond, error) {
	if len(isins) == 0 {
		return make(map[string]*analytics.Bond), nil
	}

	query := `
		SELECT isin, ticker, maturity_bucket, rating_score, yield_level, price_level
		FROM bond
		WHERE isin = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, isins)
	if err != nil {
		return nil, fmt.Errorf("failed to query bonds by isin: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*analytics.Bond, len(isins))
	for rows.Next() {
		b := &analytics.Bond{}
		if err := rows.Scan(&b.ISIN, &b.Ticker, &b.MaturityBucket, &b.RatingScore, &b.YieldLevel, &b.PriceLevel); err != nil {
			return nil, fmt.Errorf("failed to scan bond: %w", err)
		}
		result[b.ISIN] = b
	}
	return result, rows.Err()
}

// Upsert inserts or replaces bond reference data inside tx using one batch
func (r *BondRepository) Upsert(ctx context.Context, tx pgx.Tx, bonds []*analytics.Bond) (int, error) {
	if len(bonds) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO bond (isin, ticker, maturity_bucket, rating_score, yield_level, price_level, updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (isin) DO UPDATE
		SET ticker = EXCLUDED.ticker,
		    maturity_bucket = EXCLUDED.maturity_bucket,
		    rating_score = EXCLUDED.rating_score,
		    yield_level = EXCLUDED.yield_level,
		    price_level = EXCLUDED.price_level,
		    updated = NOW()
	`

	batch := &pgx.Batch{}
	for _, b := range bonds {
		batch.Queue(query, b.ISIN, b.Ticker, b.MaturityBucket, b.RatingScore, b.YieldLevel, b.PriceLevel)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	upserted := 0
	for _, b := range bonds {
		if _, err := br.Exec(); err != nil {
			return upserted, fmt.Errorf("failed to upsert bond %s: %w", b.ISIN, err)
		}
		upserted++
	}
	return upserted, nil
}

// BeginTx starts a new transaction
func (r *BondRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}
