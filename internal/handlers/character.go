package handlers

import (
	"net/http"

	"face-swap-backend/internal/models"
	"face-swap-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type CharacterHandler struct {
	characters *services.CharacterService
}

func NewCharacterHandler(characters *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		characters: characters,
	}
}

// Describe godoc
// @Summary     Describe a face
// @Description Returns a keyword description of the face in image_url. With job_id the result is also stored on the job.
// @Tags        characters
// @Accept      json
// @Produce     json
// @Param       request body models.DescribeRequest true "Image to describe"
// @Success     200 {object} models.DescribeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /describe [post]
func (h *CharacterHandler) Describe(c *gin.Context) {
	var req models.DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if !validURL(req.ImageURL) {
		badRequest(c, "image_url must be an http(s) url", nil)
		return
	}

	resp, err := h.characters.Describe(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to describe image", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cartoonize godoc
// @Summary     Generate a character cartoon
// @Description Describes the face, generates the character with that description and removes the background. A failed step still answers 200 with success=false and error set.
// @Tags        characters
// @Accept      json
// @Produce     json
// @Param       request body models.CartoonizeRequest true "Face image and character"
// @Success     200 {object} models.CartoonizeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /cartoonize [post]
func (h *CharacterHandler) Cartoonize(c *gin.Context) {
	var req models.CartoonizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if !validURL(req.ImageURL) {
		badRequest(c, "image_url must be an http(s) url", nil)
		return
	}

	resp, err := h.characters.Cartoonize(c.Request.Context(), req)
	if err != nil {
		respondError(c, "failed to cartoonize", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
