package handlers

import (
	"net/http"

	"face-swap-backend/internal/models"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

// Endpoints lists the public routes reported by the root handler.
var Endpoints = []string{
	"POST /face-swap",
	"POST /face-swap-with-cartoon",
	"POST /cartoonify-only",
	"POST /remove-background",
	"POST /remove-background-async",
	"POST /describe",
	"POST /cartoonize",
	"GET /job/{job_id}",
	"GET /health",
}

type StatsFunc func() models.WorkerStats

type HealthHandler struct {
	providers map[string]bool
	jobStore  string
	stats     StatsFunc
}

func NewHealthHandler(providers map[string]bool, jobStore string, stats StatsFunc) *HealthHandler {
	return &HealthHandler{
		providers: providers,
		jobStore:  jobStore,
		stats:     stats,
	}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and which providers are configured
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response := models.HealthResponse{
		Status:    "ok",
		Providers: h.providers,
		JobStore:  h.jobStore,
	}
	if h.stats != nil {
		stats := h.stats()
		response.Workers = &stats
	}
	c.JSON(http.StatusOK, response)
}

// Root godoc
// @Summary     Service information
// @Tags        health
// @Produce     json
// @Success     200 {object} models.RootResponse
// @Router      / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.RootResponse{
		Message:   "Face swap backend is running",
		Version:   Version,
		Endpoints: Endpoints,
	})
}
