package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"face-swap-backend/internal/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) Download(context.Context, string) ([]byte, error) {
	return s.data, s.err
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	}
}

func TestClient_DescribeFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []map[string]any `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		parts := req.Contents[0].Parts
		require.Len(t, parts, 2)
		assert.Equal(t, gemini.DescribeFacePrompt, parts[0]["text"])
		assert.NotNil(t, parts[1]["inline_data"])

		json.NewEncoder(w).Encode(textResponse("  round face, big eyes, glasses \n"))
	}))
	defer server.Close()

	client := gemini.NewClient("g-key", "gemini-2.0-flash-exp", server.URL, 5*time.Second, stubFetcher{data: []byte("\x89PNG\r\n\x1a\n")})
	desc, err := client.DescribeFace(context.Background(), "https://in/face.png", "")
	require.NoError(t, err)
	assert.Equal(t, "round face, big eyes, glasses", desc)
}

func TestClient_DescribeFace_FetchError(t *testing.T) {
	client := gemini.NewClient("g-key", "m", "http://unused", time.Second, stubFetcher{err: errors.New("404")})
	_, err := client.DescribeFace(context.Background(), "https://in/face.png", "")
	assert.ErrorContains(t, err, "failed to fetch image")
}

func TestClient_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []map[string]any `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, strings.HasSuffix(req.Contents[0].Parts[0]["text"].(string), "웃는 얼굴"))
		json.NewEncoder(w).Encode(textResponse("smiling face"))
	}))
	defer server.Close()

	client := gemini.NewClient("g-key", "m", server.URL, 5*time.Second, stubFetcher{})
	out, err := client.Translate(context.Background(), "웃는 얼굴")
	require.NoError(t, err)
	assert.Equal(t, "smiling face", out)

	out, err = client.Translate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClient_GenerateText_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "empty") {
			json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
			return
		}
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := gemini.NewClient("g-key", "m", server.URL, 5*time.Second, stubFetcher{})
	_, err := client.GenerateText(context.Background(), "hi")
	assert.ErrorContains(t, err, "status 429")

	empty := gemini.NewClient("g-key", "empty", server.URL, 5*time.Second, stubFetcher{})
	_, err = empty.GenerateText(context.Background(), "hi")
	assert.ErrorIs(t, err, gemini.ErrEmptyResponse)
}
