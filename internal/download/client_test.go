package download_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"face-swap-backend/internal/download"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		io.WriteString(w, "image-bytes")
	}))
	defer server.Close()

	data, err := download.NewClient(5*time.Second).Download(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestClient_DownloadErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.Error(w, "gone", http.StatusNotFound)
		case "/big":
			io.WriteString(w, strings.Repeat("x", 64))
		case "/empty":
		}
	}))
	defer server.Close()

	client := download.NewClient(5 * time.Second).WithMaxBytes(16)
	ctx := context.Background()

	_, err := client.Download(ctx, server.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")

	_, err = client.Download(ctx, server.URL+"/big")
	assert.ErrorContains(t, err, "exceeds")

	_, err = client.Download(ctx, server.URL+"/empty")
	assert.ErrorContains(t, err, "empty body")
}
