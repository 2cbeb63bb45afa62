package jobs_test

import (
	"context"
	"testing"

	"face-swap-backend/internal/jobs"
	"face-swap-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewMemoryStore()

	require.NoError(t, store.CreateJob(ctx, &models.Job{JobID: "j1", Type: models.StringPtr(models.KindFaceSwap)}))
	assert.Error(t, store.CreateJob(ctx, &models.Job{JobID: "j1"}))

	job, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, job.Status())
	assert.NotNil(t, job.CreatedAt)

	require.NoError(t, store.UpdateJob(ctx, "j1", models.JobUpdate{URL: models.StringPtr("https://cdn/a.png")}))
	job, err = store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, job.Status())
	assert.Equal(t, models.KindFaceSwap, models.Deref(job.Type))
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewMemoryStore()

	_, err := store.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)

	err = store.UpdateJob(ctx, "missing", models.JobUpdate{URL: models.StringPtr("https://x")})
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := jobs.NewMemoryStore()
	require.NoError(t, store.CreateJob(ctx, &models.Job{JobID: "j1"}))

	job, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	job.URL = models.StringPtr("https://mutated")

	again, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Nil(t, again.URL)
}
