package handlers

import (
	"errors"
	"net/http"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"face-swap-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, fallback string, err error) {
	var cfgErr *services.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "service not configured",
			Message: cfgErr.Error(),
		})
	case errors.Is(err, services.ErrUnsupportedExtension), errors.Is(err, services.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid file", Message: err.Error()})
	case errors.Is(err, jobs.ErrJobNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found", Message: err.Error()})
	case errors.Is(err, jobs.ErrDispatcherClosed):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "server is shutting down", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fallback, Message: err.Error()})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
