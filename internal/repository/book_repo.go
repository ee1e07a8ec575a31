package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/bondrisk/internal/analytics"
	"github.com/epeers/bondrisk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

// BookRepository handles database operations for books, their positions and limits
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// GetByID retrieves a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `
		SELECT id, name, minimum_rating, created, updated
		FROM book
		WHERE id = $1
	`
	b := &models.Book{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.MinimumRating, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return b, nil
}

// GetPositions retrieves the positions of a book in upload order
func (r *BookRepository) GetPositions(ctx context.Context, bookID int64) ([]models.BookPosition, error) {
	query := `
		SELECT book_id, ordinal, isin, size
		FROM book_position
		WHERE book_id = $1
		ORDER BY ordinal
	`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []models.BookPosition
	for rows.Next() {
		var p models.BookPosition
		if err := rows.Scan(&p.BookID, &p.Ordinal, &p.ISIN, &p.Size); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// GetLimits assembles the book's limit rows and minimum rating into analytics.Limits.
// Maps are always non-nil; a key with no row is absent.
func (r *BookRepository) GetLimits(ctx context.Context, bookID int64) (analytics.Limits, error) {
	book, err := r.GetByID(ctx, bookID)
	if err != nil {
		return analytics.Limits{}, err
	}

	query := `
		SELECT kind, key, value
		FROM book_limit
		WHERE book_id = $1
	`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return analytics.Limits{}, fmt.Errorf("failed to query limits: %w", err)
	}
	defer rows.Close()

	limits := analytics.Limits{
		TickerCap:     make(map[string]float64),
		BondCap:       make(map[string]float64),
		TenorLimits:   make(map[string]float64),
		MinimumRating: book.MinimumRating,
	}
	for rows.Next() {
		var kind models.LimitKind
		var key string
		var value float64
		if err := rows.Scan(&kind, &key, &value); err != nil {
			return analytics.Limits{}, fmt.Errorf("failed to scan limit: %w", err)
		}
		switch kind {
		case models.LimitKindTickerCap:
			limits.TickerCap[key] = value
		case models.LimitKindBondCap:
			limits.BondCap[key] = value
		case models.LimitKindTenorLimit:
			limits.TenorLimits[key] = value
		default:
			return analytics.Limits{}, fmt.Errorf("unknown limit kind %q for book %d", kind, bookID)
		}
	}
	return limits, rows.Err()
}

// ReplacePositions deletes a book's positions and inserts the new ones with
// ordinals taken from their slice index
func (r *BookRepository) ReplacePositions(ctx context.Context, tx pgx.Tx, bookID int64, positions []models.BookPosition) error {
	if _, err := tx.Exec(ctx, `DELETE FROM book_position WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	if len(positions) == 0 {
		return nil
	}

	rows := make([][]any, len(positions))
	for i, p := range positions {
		rows[i] = []any{bookID, i, p.ISIN, p.Size}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"book_position"},
		[]string{"book_id", "ordinal", "isin", "size"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert positions: %w", err)
	}
	return nil
}

// ReplaceLimits replaces all limit rows and the minimum rating of a book
func (r *BookRepository) ReplaceLimits(ctx context.Context, tx pgx.Tx, bookID int64, limits []models.BookLimit, minimumRating float64) error {
	result, err := tx.Exec(ctx, `UPDATE book SET minimum_rating = $1, updated = NOW() WHERE id = $2`, minimumRating, bookID)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM book_limit WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("failed to delete limits: %w", err)
	}

	query := `
		INSERT INTO book_limit (book_id, kind, key, value)
		VALUES ($1, $2, $3, $4)
	`
	for _, l := range limits {
		if _, err := tx.Exec(ctx, query, bookID, l.Kind, l.Key, l.Value); err != nil {
			return fmt.Errorf("failed to insert %s limit %q: %w", l.Kind, l.Key, err)
		}
	}
	return nil
}

// Create creates a new, empty book
func (r *BookRepository) Create(ctx context.Context, b *models.Book) error {
	query := `
		INSERT INTO book (name, minimum_rating, created, updated)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created, updated
	`
	return r.pool.QueryRow(ctx, query, b.Name, b.MinimumRating).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// BeginTx starts a new transaction
func (r *BookRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}
