package handlers

import (
	"net/http"

	"github.com/epeers/bondrisk/internal/models"
	"github.com/gin-gonic/gin"
)

// BondHandler handles bond reference data endpoints
type BondHandler struct {
	svc AnalyticsService
}

// NewBondHandler creates a new BondHandler
func NewBondHandler(svc AnalyticsService) *BondHandler {
	return &BondHandler{svc: svc}
}

// Import handles POST /bonds/import
// @Summary Import bond reference data from CSV
// @Description Columns: isin, ticker, maturity_bucket, rating_score, yield_level, price_level. Existing ISINs are overwritten.
// @Tags bonds
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Bonds CSV"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /bonds/import [post]
func (h *BondHandler) Import(c *gin.Context) {
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

	rows, err := ParseBondsCSV(f)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(rows) == 0 {
		badRequest(c, "no bonds in file")
		return
	}

	n, err := h.svc.ImportBonds(c.Request.Context(), rows)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ImportResponse{Imported: n})
}
