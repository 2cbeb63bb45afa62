package handlers

import (
	"fmt"
	"io"
	"net/http"

	"face-swap-backend/internal/models"
	"face-swap-backend/internal/services"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20

type BackgroundHandler struct {
	pipelines *services.PipelineService
}

func NewBackgroundHandler(pipelines *services.PipelineService) *BackgroundHandler {
	return &BackgroundHandler{
		pipelines: pipelines,
	}
}

// RemoveBackground godoc
// @Summary     Remove an image background
// @Description Removes the background of the uploaded image and waits for the result.
// @Tags        background
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Image (.png, .jpg, .jpeg)"
// @Success     200 {object} models.BackgroundRemovalResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /remove-background [post]
func (h *BackgroundHandler) RemoveBackground(c *gin.Context) {
	filename, data, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := h.pipelines.RemoveBackground(c.Request.Context(), filename, data)
	if err != nil {
		respondError(c, "failed to remove background", err)
		return
	}

	c.JSON(http.StatusOK, models.BackgroundRemovalResponse{
		Success:          true,
		JobID:            result.JobID,
		OriginalFilename: result.OriginalFilename,
		ResultFilename:   result.ResultFilename,
		ImageURL:         result.ImageURL,
		Message:          "Background removed.",
	})
}

// RemoveBackgroundAsync godoc
// @Summary     Start a background removal job
// @Description Stages the uploaded image and removes its background in the background. Poll GET /job/{job_id}.
// @Tags        background
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Image (.png, .jpg, .jpeg)"
// @Success     200 {object} models.JobSubmittedResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /remove-background-async [post]
func (h *BackgroundHandler) RemoveBackgroundAsync(c *gin.Context) {
	filename, data, ok := readUpload(c)
	if !ok {
		return
	}

	jobID, _, err := h.pipelines.SubmitBackgroundRemoval(c.Request.Context(), filename, data)
	if err != nil {
		respondError(c, "failed to start background removal", err)
		return
	}

	c.JSON(http.StatusOK, models.JobSubmittedResponse{
		Success: true,
		JobID:   jobID,
		Message: "Background removal started. Check /job/" + jobID + " for the result.",
	})
}

func readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required", err)
		return "", nil, false
	}
	if fileHeader.Size > maxUploadBytes {
		badRequest(c, "file too large", fmt.Errorf("limit is %d bytes", maxUploadBytes))
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "failed to open file", err)
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(c, "failed to read file", err)
		return "", nil, false
	}
	if len(data) == 0 {
		badRequest(c, "file is empty", nil)
		return "", nil, false
	}

	return fileHeader.Filename, data, true
}
