package rapidapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"face-swap-backend/internal/normalize"
)

// resultKeys are probed in order to find the processed image URL.
var resultKeys = []string{"result_url", "url", "output_url", "image_url", "data.url"}

type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	apiKey     string
	host       string
	baseURL    string
	httpClient *http.Client
	fetcher    Fetcher
	decoder    *normalize.Decoder
}

// NewClient builds a background removal client. baseURL defaults to https://host.
func NewClient(apiKey, host, baseURL string, timeout time.Duration, fetcher Fetcher) *Client {
	if baseURL == "" {
		baseURL = "https://" + host
	}
	return &Client{
		apiKey:  apiKey,
		host:    host,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		fetcher: fetcher,
		decoder: normalize.NewDecoder(resultKeys...),
	}
}

// RemoveBackground submits imageURL and returns the processed image bytes.
func (c *Client) RemoveBackground(ctx context.Context, imageURL string) ([]byte, error) {
	resultURL, body, err := c.submit(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	if body != nil {
		return body, nil
	}

	data, err := c.fetcher.Download(ctx, resultURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download background removal result: %w", err)
	}
	return data, nil
}

// submit returns either the result URL or, when the API answers with the
// image itself, the image bytes.
func (c *Client) submit(ctx context.Context, imageURL string) (string, []byte, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/public/remove-background",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("failed to remove background: status %d, body: %s", resp.StatusCode, string(body))
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return "", body, nil
	}

	shape, err := c.decoder.DecodeJSON(body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find result url: %w, body: %s", err, string(body))
	}
	return shape.URL, nil, nil
}
