package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/epeers/bondrisk/internal/analytics"
	"github.com/epeers/bondrisk/internal/cache"
	"github.com/epeers/bondrisk/internal/models"
	"github.com/epeers/bondrisk/internal/repository"
	"github.com/epeers/bondrisk/internal/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrConflict     = errors.New("book with same name already exists")
	ErrUnknownBond  = errors.New("unknown bond")
	ErrInvalidBook  = errors.New("invalid book")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// BookStore is the book persistence used by AnalyticsService
type BookStore interface {
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	GetPositions(ctx context.Context, bookID int64) ([]models.BookPosition, error)
	GetLimits(ctx context.Context, bookID int64) (analytics.Limits, error)
	Create(ctx context.Context, b *models.Book) error
	ReplacePositions(ctx context.Context, tx pgx.Tx, bookID int64, positions []models.BookPosition) error
	ReplaceLimits(ctx context.Context, tx pgx.Tx, bookID int64, limits []models.BookLimit, minimumRating float64) error
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// BondStore is the bond reference data persistence used by AnalyticsService
type BondStore interface {
	GetMultipleByISIN(ctx context.Context, isins []string) (map[string]*analytics.Bond, error)
	Upsert(ctx context.Context, tx pgx.Tx, bonds []*analytics.Bond) (int, error)
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// AnalyticsService builds portfolios from requests or stored books and
// runs the aggregation and limit checks over them
type AnalyticsService struct {
	bookRepo  BookStore
	bondRepo  BondStore
	bondCache *cache.MemoryCache
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(bookRepo BookStore, bondRepo BondStore, bondCache *cache.MemoryCache) *AnalyticsService {
	return &AnalyticsService{
		bookRepo:  bookRepo,
		bondRepo:  bondRepo,
		bondCache: bondCache,
	}
}

// Analyze computes a report for a book supplied inline in the request
func (s *AnalyticsService) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyticsReport, error) {
	defer TrackTime("Analyze", time.Now())

	bonds := make(map[string]*analytics.Bond, len(req.Bonds))
	for i, br := range req.Bonds {
		if _, dup := bonds[br.ISIN]; dup {
			return nil, fmt.Errorf("%w: bonds[%d]: duplicate isin %s", ErrInvalidBook, i, br.ISIN)
		}
		b, err := newBond(br)
		if err != nil {
			return nil, fmt.Errorf("bonds[%d]: %w", i, err)
		}
		bonds[b.ISIN] = b
	}

	positions := make([]*analytics.Position, 0, len(req.Positions))
	for i, pr := range req.Positions {
		b, ok := bonds[pr.ISIN]
		if !ok {
			return nil, fmt.Errorf("%w: positions[%d]: %s", ErrUnknownBond, i, pr.ISIN)
		}
		p, err := analytics.NewPosition(pr.Size, b)
		if err != nil {
			return nil, fmt.Errorf("positions[%d]: %w", i, err)
		}
		positions = append(positions, p)
	}

	minimumRating := 0.0
	if req.Limits.MinimumRating != nil {
		minimumRating = *req.Limits.MinimumRating
	}
	limits := analytics.Limits{
		TickerCap:     req.Limits.TickerCap,
		BondCap:       req.Limits.BondCap,
		TenorLimits:   req.Limits.TenorLimits,
		MinimumRating: minimumRating,
	}

	return s.buildReport(ctx, analytics.NewPortfolio(positions, limits))
}

// AnalyzeBook loads a stored book and computes its report
func (s *AnalyticsService) AnalyzeBook(ctx context.Context, bookID int64) (*models.AnalyticsReport, error) {
	defer TrackTime("AnalyzeBook", time.Now())

	var stored []models.BookPosition
	var limits analytics.Limits

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stored, err = s.bookRepo.GetPositions(gctx, bookID)
		return err
	})
	g.Go(func() error {
		var err error
		limits, err = s.bookRepo.GetLimits(gctx, bookID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book %d: %w", bookID, err)
	}

	isins := make([]string, len(stored))
	for i, p := range stored {
		isins[i] = p.ISIN
	}
	bonds, err := s.resolveBonds(ctx, isins)
	if err != nil {
		return nil, err
	}

	positions := make([]*analytics.Position, 0, len(stored))
	for _, sp := range stored {
		p, err := analytics.NewPosition(sp.Size, bonds[sp.ISIN])
		if err != nil {
			return nil, fmt.Errorf("book %d position %d: %w", bookID, sp.Ordinal, err)
		}
		positions = append(positions, p)
	}

	report, err := s.buildReport(ctx, analytics.NewPortfolio(positions, limits))
	if err != nil {
		return nil, err
	}
	report.BookID = &bookID
	return report, nil
}

// CreateBook creates an empty book
func (s *AnalyticsService) CreateBook(ctx context.Context, req *models.CreateBookRequest) (*models.Book, error) {
	book := &models.Book{Name: req.Name}
	if req.MinimumRating != nil {
		book.MinimumRating = *req.MinimumRating
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// ImportBonds validates and upserts bond reference data, then drops the
// imported ISINs from the cache
func (s *AnalyticsService) ImportBonds(ctx context.Context, rows []models.BondRequest) (int, error) {
	defer TrackTime("ImportBonds", time.Now())

	bonds := make([]*analytics.Bond, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		if _, dup := seen[r.ISIN]; dup {
			return 0, fmt.Errorf("%w: row %d: duplicate isin %s", ErrInvalidBook, i+1, r.ISIN)
		}
		seen[r.ISIN] = struct{}{}
		b, err := newBond(r)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		bonds = append(bonds, b)
	}

	tx, err := s.bondRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := s.bondRepo.Upsert(ctx, tx, bonds)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, b := range bonds {
		s.bondCache.InvalidateBond(b.ISIN)
	}
	log.Infof("imported %d bonds", n)
	return n, nil
}

// ReplacePositions replaces a book's positions. Every ISIN must already exist.
func (s *AnalyticsService) ReplacePositions(ctx context.Context, bookID int64, rows []models.PositionRequest) (int, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return 0, ErrBookNotFound
		}
		return 0, fmt.Errorf("failed to get book: %w", err)
	}

	positions := make([]models.BookPosition, len(rows))
	isins := make([]string, len(rows))
	for i, r := range rows {
		if math.IsNaN(r.Size) || math.IsInf(r.Size, 0) || r.Size < 0 {
			return 0, fmt.Errorf("%w: row %d: invalid size %v", analytics.ErrInvalidPosition, i+1, r.Size)
		}
		positions[i] = models.BookPosition{BookID: bookID, Ordinal: i, ISIN: r.ISIN, Size: r.Size}
		isins[i] = r.ISIN
	}
	if _, err := s.resolveBonds(ctx, isins); err != nil {
		return 0, err
	}

	tx, err := s.bookRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bookRepo.ReplacePositions(ctx, tx, bookID, positions); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(positions), nil
}

// ReplaceLimits replaces all limits of a book
func (s *AnalyticsService) ReplaceLimits(ctx context.Context, bookID int64, req *models.LimitsRequest) error {
	minimumRating := 0.0
	if req.MinimumRating != nil {
		minimumRating = *req.MinimumRating
	}

	tx, err := s.bookRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bookRepo.ReplaceLimits(ctx, tx, bookID, flattenLimits(bookID, req), minimumRating); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// resolveBonds looks bonds up in the cache first, then in the database.
// Any ISIN found in neither fails the call with ErrUnknownBond.
func (s *AnalyticsService) resolveBonds(ctx context.Context, isins []string) (map[string]*analytics.Bond, error) {
	unique := make([]string, 0, len(isins))
	seen := make(map[string]struct{}, len(isins))
	for _, isin := range isins {
		if _, ok := seen[isin]; ok {
			continue
		}
		seen[isin] = struct{}{}
		unique = append(unique, isin)
	}

	bonds, missing := s.bondCache.GetBonds(unique)
	if len(missing) == 0 {
		return bonds, nil
	}

	fetched, err := s.bondRepo.GetMultipleByISIN(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bonds: %w", err)
	}

	var notFound []string
	for _, isin := range missing {
		b, ok := fetched[isin]
		if !ok {
			notFound = append(notFound, isin)
			continue
		}
		s.bondCache.SetBond(b)
		bonds[isin] = b
	}
	if len(notFound) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownBond, notFound)
	}
	return bonds, nil
}

// buildReport runs every aggregate over p. Any failure from the core is
// returned wrapped; the report is only produced when all of them succeed.
func (s *AnalyticsService) buildReport(ctx context.Context, p *analytics.Portfolio) (*models.AnalyticsReport, error) {
	ctx, wc := NewWarningContext(ctx)
	for i, pos := range p.Positions() {
		if pos.Size == 0 {
			addWarningf(ctx, models.WarnZeroSizePosition, "position %d (%s) has zero size", i, pos.Bond.ISIN)
		}
		if pos.Bond.PriceLevel == 0 {
			addWarningf(ctx, models.WarnZeroPriceBond, "position %d: bond %s has zero price level", i, pos.Bond.ISIN)
		}
	}

	avgYield, err := p.AverageYield()
	if err != nil {
		return nil, fmt.Errorf("failed to compute average yield: %w", err)
	}
	avgRating, err := p.AverageRating()
	if err != nil {
		return nil, fmt.Errorf("failed to compute average rating: %w", err)
	}
	byTenor, err := p.AverageRatingByTenor()
	if err != nil {
		return nil, fmt.Errorf("failed to compute average rating by tenor: %w", err)
	}
	violations, err := p.Violations()
	if err != nil {
		log.WithField("violations_so_far", len(violations)).Warnf("limit check aborted: %v", err)
		return nil, fmt.Errorf("failed to check limits: %w", err)
	}

	if len(violations) > 0 {
		log.Debugf("limit check found %d violations", len(violations))
	}

	return &models.AnalyticsReport{
		Positions:            len(p.Positions()),
		AverageYield:         avgYield,
		AverageRating:        avgRating,
		MarketValue:          p.MarketValue(),
		AverageRatingByTenor: byTenor,
		TenorBuckets:         p.TenorBuckets().Map(),
		TickerBuckets:        p.TickerBuckets().Map(),
		Violations:           violations,
		Warnings:             wc.GetWarnings(),
	}, nil
}

func newBond(r models.BondRequest) (*analytics.Bond, error) {
	if !validator.IsTenor(r.MaturityBucket) {
		return nil, fmt.Errorf("%w: %s: malformed maturity bucket %q", analytics.ErrInvalidBond, r.ISIN, r.MaturityBucket)
	}
	return analytics.NewBond(r.ISIN, r.Ticker, r.MaturityBucket, r.RatingScore, r.YieldLevel, r.PriceLevel)
}

// flattenLimits turns the request maps into rows, sorted by kind then key.
func flattenLimits(bookID int64, req *models.LimitsRequest) []models.BookLimit {
	var rows []models.BookLimit
	add := func(kind models.LimitKind, m map[string]float64) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rows = append(rows, models.BookLimit{BookID: bookID, Kind: kind, Key: k, Value: m[k]})
		}
	}
	add(models.LimitKindTickerCap, req.TickerCap)
	add(models.LimitKindBondCap, req.BondCap)
	add(models.LimitKindTenorLimit, req.TenorLimits)
	return rows
}
