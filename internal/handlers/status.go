package handlers

import (
	"errors"
	"net/http"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	jobs *jobs.Service
}

func NewStatusHandler(jobService *jobs.Service) *StatusHandler {
	return &StatusHandler{
		jobs: jobService,
	}
}

var statusMessages = map[string]string{
	models.StatusProcessing: "Job is still processing.",
	models.StatusCompleted:  "Job completed.",
	models.StatusFailed:     "Job failed.",
}

// GetStatus godoc
// @Summary     Get job status
// @Description Returns processing until the job row has a url, then completed with image_url.
// @Tags        jobs
// @Produce     json
// @Param       job_id path string true "Job ID"
// @Success     200 {object} models.JobStatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /job/{job_id} [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found", Message: "no job with id " + jobID})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get job",
			Message: err.Error(),
		})
		return
	}

	status := job.Status()
	c.JSON(http.StatusOK, models.JobStatusResponse{
		Success:  status != models.StatusFailed,
		JobID:    job.JobID,
		Status:   status,
		Message:  statusMessages[status],
		ImageURL: job.URL,
		Error:    models.Deref(job.ErrorMessage),
	})
}
