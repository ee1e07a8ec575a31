package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/epeers/bondrisk/internal/models"
	"github.com/gin-gonic/gin"
)

// AnalyticsService is the part of services.AnalyticsService the handlers call
type AnalyticsService interface {
	Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalyticsReport, error)
	AnalyzeBook(ctx context.Context, bookID int64) (*models.AnalyticsReport, error)
	CreateBook(ctx context.Context, req *models.CreateBookRequest) (*models.Book, error)
	ImportBonds(ctx context.Context, rows []models.BondRequest) (int, error)
	ReplacePositions(ctx context.Context, bookID int64, rows []models.PositionRequest) (int, error)
	ReplaceLimits(ctx context.Context, bookID int64, req *models.LimitsRequest) error
}

// AnalyticsHandler handles portfolio analytics endpoints
type AnalyticsHandler struct {
	svc AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Analyze handles POST /analytics
// @Summary Analyze an inline book
// @Description Compute averages, buckets and limit violations for bonds, positions and limits supplied in the body
// @Tags analytics
// @Accept json
// @Produce json
// @Param request body models.AnalyzeRequest true "Book to analyze"
// @Success 200 {object} models.AnalyticsReport
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /analytics [post]
func (h *AnalyticsHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.svc.Analyze(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// AnalyzeBook handles GET /books/:id/analytics
// @Summary Analyze a stored book
// @Description Compute averages, buckets and limit violations for a stored book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} models.AnalyticsReport
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /books/{id}/analytics [get]
func (h *AnalyticsHandler) AnalyzeBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}

	report, err := h.svc.AnalyzeBook(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func bookIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid book ID")
		return 0, false
	}
	return id, true
}
