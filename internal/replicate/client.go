package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"face-swap-backend/internal/normalize"
)

const defaultPollInterval = 2 * time.Second

type Client struct {
	baseURL         string
	apiToken        string
	cartoonifyModel string
	characterModel  string
	pollInterval    time.Duration
	httpClient      *http.Client
}

type Options struct {
	BaseURL         string
	APIToken        string
	CartoonifyModel string
	CharacterModel  string
	Timeout         time.Duration
	PollInterval    time.Duration
}

type predictionRequest struct {
	Input map[string]any `json:"input"`
}

type Prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  any    `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (p *Prediction) terminal() bool {
	switch p.Status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

func NewClient(opts Options) *Client {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &Client{
		baseURL:         strings.TrimSuffix(opts.BaseURL, "/"),
		apiToken:        opts.APIToken,
		cartoonifyModel: opts.CartoonifyModel,
		characterModel:  opts.CharacterModel,
		pollInterval:    poll,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// Cartoonify turns the portrait at imageURL into a cartoon and returns the result URL.
func (c *Client) Cartoonify(ctx context.Context, imageURL string) (string, error) {
	return c.Run(ctx, c.cartoonifyModel, map[string]any{"input_image": imageURL})
}

// GenerateCharacter edits the character image at imageURL following prompt.
func (c *Client) GenerateCharacter(ctx context.Context, imageURL, prompt string) (string, error) {
	return c.Run(ctx, c.characterModel, map[string]any{
		"prompt":        prompt,
		"input_image":   imageURL,
		"output_format": "jpg",
	})
}

// Run creates a prediction for model, waits for it to finish and returns
// its output URL.
func (c *Client) Run(ctx context.Context, model string, input map[string]any) (string, error) {
	prediction, err := c.createPrediction(ctx, model, input)
	if err != nil {
		return "", err
	}

	for !prediction.terminal() {
		if prediction.URLs.Get == "" {
			return "", fmt.Errorf("prediction %s has no poll url", prediction.ID)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("prediction %s: %w", prediction.ID, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		prediction, err = c.getPrediction(ctx, prediction.URLs.Get)
		if err != nil {
			return "", err
		}
	}

	if prediction.Status != "succeeded" {
		return "", fmt.Errorf("prediction %s %s: %v", prediction.ID, prediction.Status, prediction.Error)
	}

	url, err := normalize.Default.URL(prediction.Output)
	if err != nil {
		return "", fmt.Errorf("prediction %s output: %w", prediction.ID, err)
	}
	return url, nil
}

func (c *Client) createPrediction(ctx context.Context, model string, input map[string]any) (*Prediction, error) {
	jsonData, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	return c.do(req, "create prediction")
}

func (c *Client) getPrediction(ctx context.Context, url string) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, "get prediction")
}

func (c *Client) do(req *http.Request, action string) (*Prediction, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("failed to %s: status %d, body: %s", action, resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return &prediction, nil
}
