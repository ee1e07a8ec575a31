package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/epeers/bondrisk/internal/analytics"
	"github.com/epeers/bondrisk/internal/database"
	"github.com/epeers/bondrisk/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		fmt.Println("PG_URL environment variable not set, skipping integration tests")
		os.Exit(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, pgURL)
	if err != nil {
		cancel()
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		cancel()
		db.Close()
		fmt.Printf("Failed to apply schema: %v\n", err)
		os.Exit(1)
	}
	cancel()
	testPool = db.Pool

	code := m.Run()
	db.Close()
	os.Exit(code)
}

// cleanupTestBook removes a book and everything hanging off it
func cleanupTestBook(name string) {
	ctx := context.Background()
	_, _ = testPool.Exec(ctx, `DELETE FROM book_limit WHERE book_id IN (SELECT id FROM book WHERE name = $1)`, name)
	_, _ = testPool.Exec(ctx, `DELETE FROM book_position WHERE book_id IN (SELECT id FROM book WHERE name = $1)`, name)
	_, _ = testPool.Exec(ctx, `DELETE FROM book WHERE name = $1`, name)
}

func cleanupTestBonds(isins ...string) {
	_, _ = testPool.Exec(context.Background(), `DELETE FROM bond WHERE isin = ANY($1)`, isins)
}

func TestBondRepository_UpsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	repo := NewBondRepository(testPool)
	cleanupTestBonds("ZZTEST000001", "ZZTEST000002")
	defer cleanupTestBonds("ZZTEST000001", "ZZTEST000002")

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	n, err := repo.Upsert(ctx, tx, []*analytics.Bond{
		{ISIN: "ZZTEST000001", Ticker: "ZZA", MaturityBucket: "2Y", RatingScore: 1, YieldLevel: 3, PriceLevel: 100},
		{ISIN: "ZZTEST000002", Ticker: "ZZB", MaturityBucket: "10Y", RatingScore: 5, YieldLevel: 6, PriceLevel: 92.5},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 2, n)

	// overwrite one bond
	tx, err = repo.BeginTx(ctx)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, tx, []*analytics.Bond{
		{ISIN: "ZZTEST000002", Ticker: "ZZB", MaturityBucket: "7Y", RatingScore: 5, YieldLevel: 6.5, PriceLevel: 91},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	bonds, err := repo.GetMultipleByISIN(ctx, []string{"ZZTEST000001", "ZZTEST000002", "ZZTEST404404"})
	require.NoError(t, err)
	require.Len(t, bonds, 2)
	assert.Equal(t, "7Y", bonds["ZZTEST000002"].MaturityBucket)
	assert.Equal(t, 91.0, bonds["ZZTEST000002"].PriceLevel)
	assert.NotContains(t, bonds, "ZZTEST404404")
}

func TestBookRepository_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	bondRepo := NewBondRepository(testPool)
	bookRepo := NewBookRepository(testPool)

	const name = "Repository Round Trip Test"
	cleanupTestBook(name)
	defer cleanupTestBook(name)
	cleanupTestBonds("ZZTEST000003", "ZZTEST000004")
	defer cleanupTestBonds("ZZTEST000003", "ZZTEST000004")

	tx, err := bondRepo.BeginTx(ctx)
	require.NoError(t, err)
	_, err = bondRepo.Upsert(ctx, tx, []*analytics.Bond{
		{ISIN: "ZZTEST000003", Ticker: "ZZC", MaturityBucket: "5Y", RatingScore: 2, YieldLevel: 4, PriceLevel: 100},
		{ISIN: "ZZTEST000004", Ticker: "ZZD", MaturityBucket: "5Y", RatingScore: 4, YieldLevel: 5, PriceLevel: 100},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	book := &models.Book{Name: name, MinimumRating: 3}
	require.NoError(t, bookRepo.Create(ctx, book))
	require.NotZero(t, book.ID)

	tx, err = bookRepo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, bookRepo.ReplacePositions(ctx, tx, book.ID, []models.BookPosition{
		{ISIN: "ZZTEST000004", Size: 3},
		{ISIN: "ZZTEST000003", Size: 5},
	}))
	require.NoError(t, bookRepo.ReplaceLimits(ctx, tx, book.ID, []models.BookLimit{
		{Kind: models.LimitKindTickerCap, Key: "ZZC", Value: 10},
		{Kind: models.LimitKindBondCap, Key: "ZZC", Value: 6},
		{Kind: models.LimitKindTenorLimit, Key: "5Y", Value: 20},
	}, 2.5))
	require.NoError(t, tx.Commit(ctx))

	positions, err := bookRepo.GetPositions(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "ZZTEST000004", positions[0].ISIN)
	assert.Equal(t, 1, positions[1].Ordinal)

	limits, err := bookRepo.GetLimits(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"ZZC": 10}, limits.TickerCap)
	assert.Equal(t, map[string]float64{"ZZC": 6}, limits.BondCap)
	assert.Equal(t, map[string]float64{"5Y": 20}, limits.TenorLimits)
	assert.Equal(t, 2.5, limits.MinimumRating)
}

func TestBookRepository_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	repo := NewBookRepository(testPool)

	_, err := repo.GetByID(ctx, -1)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = repo.GetLimits(ctx, -1)
	assert.ErrorIs(t, err, ErrBookNotFound)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	err = repo.ReplaceLimits(ctx, tx, -1, nil, 1)
	assert.ErrorIs(t, err, ErrBookNotFound)
}
