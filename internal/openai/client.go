package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FaceMergePrompt asks the model to put the face of the second image onto the first.
const FaceMergePrompt = "Replace the face area of the first (base) image with the face from the second image. " +
	"Keep the body, pose and framing of the base image, match the person's natural human skin color, " +
	"and make the background transparent."

var ErrNoImage = errors.New("response contained no generated image")

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Tools []tool         `json:"tools"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type tool struct {
	Type string `json:"type"`
}

type responsesResponse struct {
	Output []struct {
		Type   string `json:"type"`
		Status string `json:"status"`
		Result string `json:"result"`
	} `json:"output"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MergeFace sends both images inline and returns the decoded bytes of the
// generated image.
func (c *Client) MergeFace(ctx context.Context, base, face []byte) ([]byte, error) {
	return c.EditImages(ctx, FaceMergePrompt, base, face)
}

// EditImages runs prompt over the given PNG images with the image_generation tool.
func (c *Client) EditImages(ctx context.Context, prompt string, images ...[]byte) ([]byte, error) {
	content := []inputContent{{Type: "input_text", Text: prompt}}
	for _, img := range images {
		content = append(content, inputContent{
			Type:     "input_image",
			ImageURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
		})
	}

	payload := responsesRequest{
		Model: c.model,
		Input: []inputMessage{{Role: "user", Content: content}},
		Tools: []tool{{Type: "image_generation"}},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to generate image: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result responsesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to generate image: %s: %s", result.Error.Code, result.Error.Message)
	}

	for _, item := range result.Output {
		if item.Type != "image_generation_call" || item.Result == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(item.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to decode generated image: %w", err)
		}
		return data, nil
	}

	return nil, ErrNoImage
}
