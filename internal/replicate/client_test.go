package replicate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"face-swap-backend/internal/replicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(url string) *replicate.Client {
	return replicate.NewClient(replicate.Options{
		BaseURL:         url,
		APIToken:        "r8_test",
		CartoonifyModel: "flux-kontext-apps/cartoonify",
		CharacterModel:  "black-forest-labs/flux-kontext-pro",
		Timeout:         5 * time.Second,
		PollInterval:    time.Millisecond,
	})
}

func TestClient_Cartoonify_Immediate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/flux-kontext-apps/cartoonify/predictions", r.URL.Path)
		assert.Equal(t, "wait", r.Header.Get("Prefer"))
		assert.Equal(t, "Bearer r8_test", r.Header.Get("Authorization"))

		var req map[string]map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://in/face.png", req["input"]["input_image"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": "p1", "status": "succeeded", "output": "https://replicate.delivery/out.png",
		})
	}))
	defer server.Close()

	url, err := newClient(server.URL).Cartoonify(context.Background(), "https://in/face.png")
	require.NoError(t, err)
	assert.Equal(t, "https://replicate.delivery/out.png", url)
}

func TestClient_Run_PollsUntilDone(t *testing.T) {
	var polls atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{
				"id": "p2", "status": "starting", "urls": map[string]string{"get": server.URL + "/predictions/p2"},
			})
			return
		}
		if polls.Add(1) < 3 {
			json.NewEncoder(w).Encode(map[string]any{
				"id": "p2", "status": "processing", "urls": map[string]string{"get": server.URL + "/predictions/p2"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "p2", "status": "succeeded", "output": []string{"https://replicate.delivery/list.jpg"},
		})
	}))
	defer server.Close()

	url, err := newClient(server.URL).GenerateCharacter(context.Background(), "https://in/char.png", "he smiles")
	require.NoError(t, err)
	assert.Equal(t, "https://replicate.delivery/list.jpg", url)
	assert.Equal(t, int32(3), polls.Load())
}

func TestClient_Run_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "p3", "status": "failed", "error": "NSFW content detected"})
	}))
	defer server.Close()

	_, err := newClient(server.URL).Cartoonify(context.Background(), "https://in/face.png")
	assert.ErrorContains(t, err, "NSFW")
}

func TestClient_Run_UnusableOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "p4", "status": "succeeded", "output": nil})
	}))
	defer server.Close()

	_, err := newClient(server.URL).Cartoonify(context.Background(), "https://in/face.png")
	assert.Error(t, err)
}

func TestClient_Run_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Unauthenticated"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Cartoonify(context.Background(), "https://in/face.png")
	assert.ErrorContains(t, err, "status 401")
}
