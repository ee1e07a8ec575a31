package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/epeers/bondrisk/internal/analytics"
	"github.com/epeers/bondrisk/internal/models"
	"github.com/epeers/bondrisk/internal/services"
	"github.com/epeers/bondrisk/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsService is a mock analytics service for testing
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyticsReport, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsReport), args.Error(1)
}

func (m *MockAnalyticsService) AnalyzeBook(ctx context.Context, bookID int64) (*models.AnalyticsReport, error) {
	args := m.Called(bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsReport), args.Error(1)
}

func (m *MockAnalyticsService) CreateBook(ctx context.Context, req *models.CreateBookRequest) (*models.Book, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockAnalyticsService) ImportBonds(ctx context.Context, rows []models.BondRequest) (int, error) {
	args := m.Called(rows)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsService) ReplacePositions(ctx context.Context, bookID int64, rows []models.PositionRequest) (int, error) {
	args := m.Called(bookID, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockAnalyticsService) ReplaceLimits(ctx context.Context, bookID int64, req *models.LimitsRequest) error {
	args := m.Called(bookID, req)
	return args.Error(0)
}

func setupRouter(svc AnalyticsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Register()

	analyticsHandler := NewAnalyticsHandler(svc)
	bookHandler := NewBookHandler(svc)
	bondHandler := NewBondHandler(svc)

	r := gin.New()
	r.POST("/analytics", analyticsHandler.Analyze)
	r.POST("/books", bookHandler.Create)
	r.GET("/books/:id/analytics", analyticsHandler.AnalyzeBook)
	r.PUT("/books/:id/positions", bookHandler.UploadPositions)
	r.PUT("/books/:id/limits", bookHandler.UpdateLimits)
	r.POST("/bonds/import", bondHandler.Import)
	return r
}

func doJSON(r http.Handler, method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, r http.Handler, method, url, csvContent string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvContent))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const analyzeBody = `{
  "bonds": [
    {"isin": "XS01", "ticker": "AAA", "maturity_bucket": "5Y", "rating_score": 2, "yield_level": 4, "price_level": 101.5},
    {"isin": "XS02", "ticker": "BBB", "maturity_bucket": "5Y", "rating_score": 4, "yield_level": 5, "price_level": 99}
  ],
  "positions": [{"isin": "XS01", "size": 5}, {"isin": "XS02", "size": 3}],
  "limits": {
    "ticker_cap": {"AAA": 10, "BBB": 10},
    "bond_cap": {"AAA": 10, "BBB": 2},
    "tenor_limits": {"5Y": 20},
    "minimum_rating": 2.5
  }
}`

func TestAnalyze_EndToEnd(t *testing.T) {
	// no stores needed for an inline book
	r := setupRouter(services.NewAnalyticsService(nil, nil, nil))

	w := doJSON(r, http.MethodPost, "/analytics", analyzeBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report models.AnalyticsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.InDelta(t, 4.375, report.AverageYield, 1e-12)
	assert.InDelta(t, 2.75, report.AverageRating, 1e-12)
	assert.Equal(t, []string{
		"Position size exceeds limit: BBB",
		"Average rating is 2.75, below min rating 2.5",
	}, report.Violations)
	assert.Nil(t, report.BookID)
}

func TestAnalyze_BindingErrors(t *testing.T) {
	r := setupRouter(new(MockAnalyticsService))

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"bonds": [`},
		{name: "missing minimum rating", body: `{"limits": {}}`},
		{name: "bad tenor", body: `{"bonds": [{"isin": "X", "ticker": "T", "maturity_bucket": "soon"}], "limits": {"minimum_rating": 1}}`},
		{name: "negative size", body: `{"positions": [{"isin": "X", "size": -1}], "limits": {"minimum_rating": 1}}`},
		{name: "bad tenor limit key", body: `{"limits": {"tenor_limits": {"long": 5}, "minimum_rating": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/analytics", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "bad_request", decodeError(t, w).Error)
		})
	}
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"division undefined", &analytics.DivisionUndefinedError{Metric: "average yield"}, http.StatusUnprocessableEntity, "unprocessable"},
		{"missing config", fmt.Errorf("failed to check limits: %w", &analytics.MissingConfigurationError{Limit: analytics.LimitBondCap, Key: "AAA"}), http.StatusUnprocessableEntity, "unprocessable"},
		{"unknown bond", fmt.Errorf("%w: XS9", services.ErrUnknownBond), http.StatusUnprocessableEntity, "unprocessable"},
		{"invalid bond", analytics.ErrInvalidBond, http.StatusBadRequest, "bad_request"},
		{"invalid book", services.ErrInvalidBook, http.StatusBadRequest, "bad_request"},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalyticsService)
			svc.On("Analyze", mock.Anything).Return(nil, tt.err)
			r := setupRouter(svc)

			w := doJSON(r, http.MethodPost, "/analytics", `{"limits": {"minimum_rating": 3}}`)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalyzeBook(t *testing.T) {
	id := int64(7)
	svc := new(MockAnalyticsService)
	svc.On("AnalyzeBook", int64(7)).Return(&models.AnalyticsReport{BookID: &id, Positions: 2, Violations: []string{}}, nil)
	svc.On("AnalyzeBook", int64(8)).Return(nil, services.ErrBookNotFound)
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/books/7/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report models.AnalyticsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotNil(t, report.BookID)
	assert.Equal(t, int64(7), *report.BookID)

	w = doJSON(r, http.MethodGet, "/books/8/analytics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/books/abc/analytics", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestCreateBook(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("CreateBook", mock.MatchedBy(func(req *models.CreateBookRequest) bool {
		return req.Name == "IG Credit"
	})).Return(&models.Book{ID: 1, Name: "IG Credit", MinimumRating: 3}, nil)
	svc.On("CreateBook", mock.MatchedBy(func(req *models.CreateBookRequest) bool {
		return req.Name == "Dup"
	})).Return(nil, services.ErrConflict)
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/books", `{"name": "IG Credit", "minimum_rating": 3}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/books", `{"name": "Dup", "minimum_rating": 3}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/books", `{"name": "No Rating"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPositions(t *testing.T) {
	svc := new(MockAnalyticsService)
	want := []models.PositionRequest{{ISIN: "XS02", Size: 3}, {ISIN: "XS01", Size: 5}}
	svc.On("ReplacePositions", int64(3), want).Return(2, nil)
	r := setupRouter(svc)

	w := doUpload(t, r, http.MethodPut, "/books/3/positions", "isin,size\nXS02,3\nXS01,5\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)

	w = doUpload(t, r, http.MethodPut, "/books/3/positions", "isin,notional\nXS02,3\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "size")

	w = doJSON(r, http.MethodPut, "/books/3/positions", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestUpdateLimits(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("ReplaceLimits", int64(4), mock.Anything).Return(nil)
	svc.On("ReplaceLimits", int64(5), mock.Anything).Return(services.ErrBookNotFound)
	r := setupRouter(svc)

	body := `{"ticker_cap": {"AAA": 10}, "bond_cap": {"AAA": 5}, "tenor_limits": {"5Y": 20}, "minimum_rating": 3}`
	w := doJSON(r, http.MethodPut, "/books/4/limits", body)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodPut, "/books/5/limits", body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPut, "/books/4/limits", `{"ticker_cap": {"AAA": -1}, "minimum_rating": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportBonds(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("ImportBonds", mock.MatchedBy(func(rows []models.BondRequest) bool {
		return len(rows) == 1 && rows[0].ISIN == "XS01"
	})).Return(1, nil)
	r := setupRouter(svc)

	csv := "isin,ticker,maturity_bucket,rating_score,yield_level,price_level\nXS01,AAA,5Y,2,4,100\n"
	w := doUpload(t, r, http.MethodPost, "/bonds/import", csv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doUpload(t, r, http.MethodPost, "/bonds/import", "isin,ticker,maturity_bucket,rating_score,yield_level,price_level\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}
