package handlers

import (
	"net/http"
	"net/url"

	"face-swap-backend/internal/models"
	"face-swap-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type JobsHandler struct {
	pipelines *services.PipelineService
}

func NewJobsHandler(pipelines *services.PipelineService) *JobsHandler {
	return &JobsHandler{
		pipelines: pipelines,
	}
}

// FaceSwap godoc
// @Summary     Start a face swap
// @Description Queues a job that puts the face from face_image_url onto base_image_url. Poll GET /job/{job_id} for the result.
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Param       request body models.FaceSwapRequest true "Source images"
// @Success     200 {object} models.JobSubmittedResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /face-swap [post]
func (h *JobsHandler) FaceSwap(c *gin.Context) {
	var req models.FaceSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if !validURL(req.BaseImageURL) || !validURL(req.FaceImageURL) {
		badRequest(c, "base_image_url and face_image_url must be http(s) urls", nil)
		return
	}

	jobID, _, err := h.pipelines.SubmitFaceSwap(c.Request.Context(), req.BaseImageURL, req.FaceImageURL)
	if err != nil {
		respondError(c, "failed to start face swap", err)
		return
	}

	c.JSON(http.StatusOK, models.JobSubmittedResponse{
		Success: true,
		JobID:   jobID,
		Message: "Face swap started. Check /job/" + jobID + " for the result.",
	})
}

// FaceSwapWithCartoon godoc
// @Summary     Start a cartoon face swap
// @Description Cartoonifies the face image, then merges it onto the base image.
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Param       request body models.FaceSwapRequest true "Source images"
// @Success     200 {object} models.JobSubmittedResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /face-swap-with-cartoon [post]
func (h *JobsHandler) FaceSwapWithCartoon(c *gin.Context) {
	var req models.FaceSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if !validURL(req.BaseImageURL) || !validURL(req.FaceImageURL) {
		badRequest(c, "base_image_url and face_image_url must be http(s) urls", nil)
		return
	}

	jobID, _, err := h.pipelines.SubmitFaceSwapCartoon(c.Request.Context(), req.BaseImageURL, req.FaceImageURL)
	if err != nil {
		respondError(c, "failed to start cartoon face swap", err)
		return
	}

	c.JSON(http.StatusOK, models.JobSubmittedResponse{
		Success: true,
		JobID:   jobID,
		Message: "Cartoon face swap started. Check /job/" + jobID + " for the result.",
	})
}

// CartoonifyOnly godoc
// @Summary     Start a cartoonify job
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Param       request body models.CartoonifyRequest true "Source image"
// @Success     200 {object} models.JobSubmittedResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /cartoonify-only [post]
func (h *JobsHandler) CartoonifyOnly(c *gin.Context) {
	var req models.CartoonifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if !validURL(req.ImageURL) {
		badRequest(c, "image_url must be an http(s) url", nil)
		return
	}

	jobID, _, err := h.pipelines.SubmitCartoonify(c.Request.Context(), req.ImageURL)
	if err != nil {
		respondError(c, "failed to start cartoonify", err)
		return
	}

	c.JSON(http.StatusOK, models.JobSubmittedResponse{
		Success: true,
		JobID:   jobID,
		Message: "Cartoonify started. Check /job/" + jobID + " for the result.",
	})
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
