package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"face-swap-backend/internal/handlers"
	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"face-swap-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStorage) Upload(bucket, path string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+path] = data
	return "https://storage.test/" + bucket + "/" + path, nil
}

func (s *memStorage) Remove(bucket string, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.objects, bucket+"/"+p)
	}
	return nil
}

func (s *memStorage) Download(bucket, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type staticDownloader struct{ data []byte }

func (d staticDownloader) Download(context.Context, string) ([]byte, error) {
	return d.data, nil
}

type staticCartoons struct{}

func (staticCartoons) Cartoonify(context.Context, string) (string, error) {
	return "https://replicate.test/cartoon.png", nil
}

func (staticCartoons) GenerateCharacter(context.Context, string, string) (string, error) {
	return "https://replicate.test/character.png", nil
}

type staticRemover struct{ data []byte }

func (r staticRemover) RemoveBackground(context.Context, string) ([]byte, error) {
	return r.data, nil
}

type staticDescriber struct{}

func (staticDescriber) DescribeFace(context.Context, string, string) (string, error) {
	return "short brown hair, glasses", nil
}

func (staticDescriber) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}

type staticCatalog struct{}

func (staticCatalog) RandomCharacterImage(context.Context, string) (string, error) {
	return "https://cdn.test/hero.png", nil
}

func fullProviders(t *testing.T) services.Providers {
	img := pngBytes(t)
	return services.Providers{
		Downloader: staticDownloader{data: img},
		Cartoons:   staticCartoons{},
		Generator:  staticCartoons{},
		Remover:    staticRemover{data: img},
		Describer:  staticDescriber{},
		Characters: staticCatalog{},
		Storage:    &memStorage{objects: map[string][]byte{}},
	}
}

func newTestRouter(t *testing.T, p services.Providers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dispatcher := jobs.NewDispatcher(4, zerolog.Nop())
	jobService := jobs.NewService(jobs.NewMemoryStore(), dispatcher, nil, false, zerolog.Nop())
	pipelines := services.NewPipelineService(jobService, p, services.PipelineConfig{
		StorageBucket:    "images",
		BackgroundBucket: "image",
		WorkDir:          t.TempDir(),
		RetryDelay:       time.Millisecond,
	}, zerolog.Nop())
	characters := services.NewCharacterService(jobService, p, pipelines, zerolog.Nop())
	t.Cleanup(func() {
		_ = dispatcher.Shutdown(context.Background())
	})

	return handlers.NewRouter(handlers.Handlers{
		Jobs:       handlers.NewJobsHandler(pipelines),
		Status:     handlers.NewStatusHandler(jobService),
		Background: handlers.NewBackgroundHandler(pipelines),
		Characters: handlers.NewCharacterHandler(characters),
		Health:     handlers.NewHealthHandler(map[string]bool{"replicate": true}, "memory", jobService.Stats),
	}, zerolog.Nop(), "")
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postFile(t *testing.T, router *gin.Engine, path, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(t, services.Providers{})

	w := get(router, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.JobStore)
	assert.True(t, resp.Providers["replicate"])
	require.NotNil(t, resp.Workers)
	assert.Equal(t, 4, resp.Workers.Size)
}

func TestRootHandler(t *testing.T) {
	router := newTestRouter(t, services.Providers{})

	w := get(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), handlers.Version)
	assert.Contains(t, w.Body.String(), "POST /face-swap")
}

func TestCartoonifyOnly_CompletesJob(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	w := postJSON(router, "/cartoonify-only", `{"image_url":"https://example.com/me.png"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var submitted models.JobSubmittedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.True(t, submitted.Success)
	require.NotEmpty(t, submitted.JobID)

	var status models.JobStatusResponse
	require.Eventually(t, func() bool {
		w := get(router, "/job/"+submitted.JobID)
		if w.Code != http.StatusOK {
			return false
		}
		status = models.JobStatusResponse{}
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == models.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	require.NotNil(t, status.ImageURL)
	assert.Equal(t, "https://storage.test/images/cartoon_only_"+submitted.JobID+".png", *status.ImageURL)
}

func TestGetStatus_UnknownJob(t *testing.T) {
	router := newTestRouter(t, services.Providers{})

	w := get(router, "/job/does-not-exist")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "job not found")
}

func TestFaceSwap_InvalidBody(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing face url", body: `{"base_image_url":"https://example.com/a.png"}`},
		{name: "non http url", body: `{"base_image_url":"ftp://example.com/a.png","face_image_url":"https://example.com/b.png"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/face-swap", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestFaceSwap_NotConfigured(t *testing.T) {
	router := newTestRouter(t, services.Providers{})

	w := postJSON(router, "/face-swap", `{"base_image_url":"https://example.com/a.png","face_image_url":"https://example.com/b.png"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "service not configured")
	assert.Contains(t, w.Body.String(), "OPENAI_ACCESS_KEY")
}

func TestRemoveBackground_Sync(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	w := postFile(t, router, "/remove-background", "portrait.png", pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.BackgroundRemovalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "portrait.png", resp.OriginalFilename)
	assert.True(t, strings.HasPrefix(resp.ResultFilename, "portrait_"))
	assert.True(t, strings.HasSuffix(resp.ResultFilename, "_post.png"))
	assert.Equal(t, "https://storage.test/image/"+resp.ResultFilename, resp.ImageURL)

	w = get(router, "/job/"+resp.JobID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.StatusCompleted)
}

func TestRemoveBackground_RejectsUpload(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	w := postFile(t, router, "/remove-background", "notes.gif", pngBytes(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFile(t, router, "/remove-background", "fake.png", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ := http.NewRequest("POST", "/remove-background", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveBackgroundAsync(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	w := postFile(t, router, "/remove-background-async", "portrait.jpg", pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var submitted models.JobSubmittedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))

	require.Eventually(t, func() bool {
		w := get(router, "/job/"+submitted.JobID)
		return strings.Contains(w.Body.String(), `"status":"completed"`)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDescribe(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	w := postJSON(router, "/describe", `{"image_url":"https://example.com/me.png","character_id":"7"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.DescribeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "short brown hair, glasses", resp.Description)
	require.NotNil(t, resp.CharacterImageURL)
	assert.Equal(t, "https://cdn.test/hero.png", *resp.CharacterImageURL)
}

func TestCartoonize(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	w := postJSON(router, "/cartoonize", `{"image_url":"https://example.com/me.png","character_id":"7","custom_prompt":"as a pirate"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CartoonizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "https://replicate.test/character.png", resp.GeneratedImageURL)
	require.NotNil(t, resp.BackgroundRemovedURL)
	assert.Contains(t, *resp.BackgroundRemovedURL, "cartoon_bg_removed_")
}

type missingCatalog struct{}

func (missingCatalog) RandomCharacterImage(context.Context, string) (string, error) {
	return "", errors.New("no images for character 7")
}

func TestCartoonize_StepFailureAnswersOK(t *testing.T) {
	p := fullProviders(t)
	p.Characters = missingCatalog{}
	router := newTestRouter(t, p)

	w := postJSON(router, "/cartoonize", `{"image_url":"https://example.com/me.png","character_id":"7","custom_prompt":"as a pirate"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CartoonizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no images for character 7")
	assert.Empty(t, resp.GeneratedImageURL)
}

func TestCartoonize_RejectsIncompleteBody(t *testing.T) {
	router := newTestRouter(t, fullProviders(t))

	tests := []struct {
		name string
		body string
	}{
		{name: "missing character_id", body: `{"image_url":"https://example.com/me.png","custom_prompt":"as a pirate"}`},
		{name: "missing custom_prompt", body: `{"image_url":"https://example.com/me.png","character_id":"7"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/cartoonize", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
