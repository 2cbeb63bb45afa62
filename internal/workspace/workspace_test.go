package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"face-swap-backend/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_Lifecycle(t *testing.T) {
	root := t.TempDir()

	ws, err := workspace.New(root, "job-1")
	require.NoError(t, err)

	path, err := ws.Write("base.png", []byte("data"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	require.NoError(t, ws.Close())
	_, err = os.Stat(filepath.Join(root, "job-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestWorkspace_RejectsTraversal(t *testing.T) {
	_, err := workspace.New(t.TempDir(), "../escape")
	assert.Error(t, err)

	_, err = workspace.New(t.TempDir(), "")
	assert.Error(t, err)
}

func TestWorkspace_PathStaysInside(t *testing.T) {
	root := t.TempDir()
	ws, err := workspace.New(root, "job-2")
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, filepath.Join(root, "job-2", "passwd"), ws.Path("../../etc/passwd"))
}
