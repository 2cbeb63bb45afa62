package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	DefaultMaxBytes = 50 << 20
)

type Client struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   DefaultMaxBytes,
	}
}

func (c *Client) WithMaxBytes(n int64) *Client {
	c.maxBytes = n
	return c
}

// Download fetches url and returns the body. Bodies larger than the
// configured limit are rejected.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("failed to download %s: status %d, body: %s", url, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("download %s exceeds %d bytes", url, c.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download %s returned an empty body", url)
	}

	return data, nil
}
