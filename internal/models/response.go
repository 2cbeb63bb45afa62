package models

type JobSubmittedResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type JobStatusResponse struct {
	Success  bool    `json:"success"`
	JobID    string  `json:"job_id"`
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	ImageURL *string `json:"image_url"`
	Error    string  `json:"error,omitempty"`
}

type BackgroundRemovalResponse struct {
	Success          bool   `json:"success"`
	JobID            string `json:"job_id"`
	OriginalFilename string `json:"original_filename"`
	ResultFilename   string `json:"result_filename"`
	ImageURL         string `json:"image_url"`
	Message          string `json:"message"`
}

type DescribeResponse struct {
	Success           bool    `json:"success"`
	Description       string  `json:"description,omitempty"`
	CharacterImageURL *string `json:"character_image_url,omitempty"`
	ProcessingTime    float64 `json:"processing_time"`
	Error             string  `json:"error,omitempty"`
}

type CartoonizeResponse struct {
	Success              bool               `json:"success"`
	CharacterImageURL    string             `json:"character_image_url,omitempty"`
	Description          string             `json:"description,omitempty"`
	TranslatedPrompt     string             `json:"translated_prompt,omitempty"`
	GeneratedImageURL    string             `json:"generated_image_url,omitempty"`
	BackgroundRemovedURL *string            `json:"background_removed_url"`
	StepTimes            map[string]float64 `json:"step_times,omitempty"`
	TotalTime            float64            `json:"total_time"`
	Error                string             `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers,omitempty"`
	JobStore  string          `json:"job_store,omitempty"`
	Workers   *WorkerStats    `json:"workers,omitempty"`
}

type WorkerStats struct {
	Size    int   `json:"size"`
	Running int64 `json:"running"`
	Queued  int64 `json:"queued"`
}

type RootResponse struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}
