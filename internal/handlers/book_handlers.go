package handlers

import (
	"net/http"

	"github.com/epeers/bondrisk/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// BookHandler handles book CRUD endpoints
type BookHandler struct {
	svc AnalyticsService
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(svc AnalyticsService) *BookHandler {
	return &BookHandler{svc: svc}
}

// Create handles POST /books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param request body models.CreateBookRequest true "Book"
// @Success 201 {object} models.Book
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	book, err := h.svc.CreateBook(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

// UploadPositions handles PUT /books/:id/positions
// @Summary Replace book positions from CSV
// @Description Upload a CSV with isin and size columns. Row order is the analysis order.
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Book ID"
// @Param file formData file true "Positions CSV"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /books/{id}/positions [put]
func (h *BookHandler) UploadPositions(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "failed to open uploaded file")
		return
	}
	defer f.Close()

	rows, err := ParsePositionsCSV(f)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	n, err := h.svc.ReplacePositions(c.Request.Context(), id, rows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	log.WithFields(log.Fields{"book_id": id, "positions": n}).Info("positions replaced")
	c.JSON(http.StatusOK, models.ImportResponse{Imported: n})
}

// UpdateLimits handles PUT /books/:id/limits
// @Summary Replace book limits
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body models.LimitsRequest true "Limits"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /books/{id}/limits [put]
func (h *BookHandler) UpdateLimits(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req models.LimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.svc.ReplaceLimits(c.Request.Context(), id, &req); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
