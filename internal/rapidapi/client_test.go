package rapidapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"face-swap-backend/internal/download"
	"face-swap-backend/internal/rapidapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RemoveBackground(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/remove-background":
			assert.Equal(t, "rk", r.Header.Get("x-rapidapi-key"))
			assert.Equal(t, "remove-background18.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "https://in/photo.png", r.PostForm.Get("image_url"))

			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"status":"ok","data":{"url":"`+server.URL+`/result.png"}}`)
		case "/result.png":
			io.WriteString(w, "transparent-png")
		}
	}))
	defer server.Close()

	client := rapidapi.NewClient("rk", "remove-background18.p.rapidapi.com", server.URL, 5*time.Second, download.NewClient(5*time.Second))
	data, err := client.RemoveBackground(context.Background(), "https://in/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "transparent-png", string(data))
}

func TestClient_RemoveBackground_ImageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "inline-png")
	}))
	defer server.Close()

	client := rapidapi.NewClient("rk", "host", server.URL, 5*time.Second, download.NewClient(5*time.Second))
	data, err := client.RemoveBackground(context.Background(), "https://in/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "inline-png", string(data))
}

func TestClient_RemoveBackground_NoResultURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"error","message":"bad image"}`)
	}))
	defer server.Close()

	client := rapidapi.NewClient("rk", "host", server.URL, 5*time.Second, download.NewClient(5*time.Second))
	_, err := client.RemoveBackground(context.Background(), "https://in/photo.png")
	assert.ErrorContains(t, err, "failed to find result url")
}

func TestClient_RemoveBackground_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := rapidapi.NewClient("rk", "host", server.URL, 5*time.Second, download.NewClient(5*time.Second))
	_, err := client.RemoveBackground(context.Background(), "https://in/photo.png")
	assert.ErrorContains(t, err, "status 403")
}
