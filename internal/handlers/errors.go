package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/bondrisk/internal/analytics"
	"github.com/epeers/bondrisk/internal/models"
	"github.com/epeers/bondrisk/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondWithError maps a service error onto a status code and error body
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrDivisionUndefined),
		errors.Is(err, analytics.ErrMissingConfiguration),
		errors.Is(err, services.ErrUnknownBond):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "unprocessable",
			Message: err.Error(),
		})
	case errors.Is(err, analytics.ErrInvalidBond),
		errors.Is(err, analytics.ErrInvalidPosition),
		errors.Is(err, services.ErrInvalidBook):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrBookNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	default:
		log.WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}
