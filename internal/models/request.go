package models

type FaceSwapRequest struct {
	BaseImageURL string `json:"base_image_url" binding:"required" example:"https://example.com/base.png"`
	FaceImageURL string `json:"face_image_url" binding:"required" example:"https://example.com/face.png"`
}

type CartoonifyRequest struct {
	ImageURL string `json:"image_url" binding:"required" example:"https://example.com/face.png"`
}

type DescribeRequest struct {
	ImageURL     string `json:"image_url" binding:"required"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
	// CharacterID selects a character whose cartoon picture is returned alongside the description.
	CharacterID string `json:"character_id,omitempty"`
	// JobID, when set, makes the result land in the job row's result column.
	JobID string `json:"job_id,omitempty"`
}

type CartoonizeRequest struct {
	ImageURL     string `json:"image_url" binding:"required"`
	CharacterID  string `json:"character_id" binding:"required"`
	CustomPrompt string `json:"custom_prompt" binding:"required"`
	JobID        string `json:"job_id,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
