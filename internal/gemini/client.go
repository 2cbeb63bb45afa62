package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DescribeFacePrompt = "Describe the person's face in this image as a short list of simple English keywords. " +
	"Cover the eyes, the face shape and any accessories such as glasses or earrings. " +
	"Answer with the keywords only, separated by commas."

const translatePrompt = "Translate the following text into natural English for an image generation prompt. " +
	"If it is already English, return it unchanged. Keep it short, do not add explanations, quotes or extra details. " +
	"Return only the translation.\n\nText: "

var ErrEmptyResponse = errors.New("gemini returned no text")

// Image is an inline image part.
type Image struct {
	MimeType string
	Data     []byte
}

type ImageFetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	fetcher    ImageFetcher
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration, fetcher ImageFetcher) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		fetcher: fetcher,
	}
}

// DescribeFace downloads the image and asks for a keyword description of the
// face. An empty customPrompt uses DescribeFacePrompt.
func (c *Client) DescribeFace(ctx context.Context, imageURL, customPrompt string) (string, error) {
	data, err := c.fetcher.Download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image for description: %w", err)
	}

	prompt := strings.TrimSpace(customPrompt)
	if prompt == "" {
		prompt = DescribeFacePrompt
	}
	return c.GenerateText(ctx, prompt, Image{MimeType: http.DetectContentType(data), Data: data})
}

// Translate returns text rendered as English. Empty input stays empty.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return c.GenerateText(ctx, translatePrompt+text)
}

func (c *Client) GenerateText(ctx context.Context, prompt string, images ...Image) (string, error) {
	parts := []part{{Text: prompt}}
	for _, img := range images {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: img.MimeType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(generateRequest{Contents: []content{{Role: "user", Parts: parts}}}); err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		var body bytes.Buffer
		_, _ = body.ReadFrom(resp.Body)
		return "", fmt.Errorf("failed to generate content: status %d, body: %s", resp.StatusCode, body.String())
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
