package services_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	removed    []string
	err        error
	failPrefix string // uploads under this prefix fail
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(bucket, path string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.failPrefix != "" && strings.HasPrefix(path, s.failPrefix) {
		return "", fmt.Errorf("upload %s: bucket unavailable", path)
	}
	s.objects[bucket+"/"+path] = data
	return "https://storage.test/" + bucket + "/" + path, nil
}

func (s *fakeStorage) Remove(bucket string, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.objects, bucket+"/"+p)
		s.removed = append(s.removed, bucket+"/"+p)
	}
	return nil
}

func (s *fakeStorage) Download(bucket, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+path]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, path)
	}
	return data, nil
}

func (s *fakeStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	return out
}

func (s *fakeStorage) get(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[strings.TrimPrefix(url, "https://storage.test/")]
	return data, ok
}

type fakeDownloader struct {
	files   map[string][]byte
	storage *fakeStorage
}

func (d *fakeDownloader) Download(_ context.Context, url string) ([]byte, error) {
	if data, ok := d.files[url]; ok {
		return data, nil
	}
	if d.storage != nil {
		if data, ok := d.storage.get(url); ok {
			return data, nil
		}
	}
	return nil, fmt.Errorf("download %s: status 404", url)
}

type fakeMerger struct {
	out   []byte
	err   error
	calls int
}

func (m *fakeMerger) MergeFace(context.Context, []byte, []byte) ([]byte, error) {
	m.calls++
	return m.out, m.err
}

// flakyCartoonifier fails the first failures calls.
type flakyCartoonifier struct {
	mu       sync.Mutex
	failures int
	calls    int
	url      string
}

func (c *flakyCartoonifier) Cartoonify(context.Context, string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= c.failures {
		return "", errors.New("replicate timeout")
	}
	return c.url, nil
}

func (c *flakyCartoonifier) GenerateCharacter(ctx context.Context, _, _ string) (string, error) {
	return c.Cartoonify(ctx, "")
}

type fakeRemover struct {
	out []byte
	err error
}

func (r *fakeRemover) RemoveBackground(context.Context, string) ([]byte, error) {
	return r.out, r.err
}

type fakeDescriber struct {
	description string
	err         error
}

func (d *fakeDescriber) DescribeFace(context.Context, string, string) (string, error) {
	return d.description, d.err
}

func (d *fakeDescriber) Translate(_ context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	return "translated " + text, nil
}

type fakeCatalog struct {
	url string
	err error
}

func (c *fakeCatalog) RandomCharacterImage(context.Context, string) (string, error) {
	return c.url, c.err
}

type harness struct {
	store     *jobs.MemoryStore
	jobs      *jobs.Service
	pipelines *services.PipelineService
	workDir   string
}

func newHarness(t *testing.T, p services.Providers) *harness {
	t.Helper()
	store := jobs.NewMemoryStore()
	jobService := jobs.NewService(store, jobs.NewDispatcher(4, zerolog.Nop()), nil, false, zerolog.Nop())
	workDir := t.TempDir()
	pipelines := services.NewPipelineService(jobService, p, services.PipelineConfig{
		StorageBucket:    "images",
		BackgroundBucket: "image",
		WorkDir:          workDir,
		Retries:          2,
		RetryDelay:       time.Millisecond,
	}, zerolog.Nop())
	return &harness{store: store, jobs: jobService, pipelines: pipelines, workDir: workDir}
}
