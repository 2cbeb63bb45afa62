// Package workspace manages the per-job scratch directory intermediate
// images are written to.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

type Workspace struct {
	dir string
}

// New creates root/jobID. The caller must Close it on every exit path.
func New(root, jobID string) (*Workspace, error) {
	if jobID == "" || filepath.Base(jobID) != jobID {
		return nil, fmt.Errorf("invalid workspace name %q", jobID)
	}
	dir := filepath.Join(root, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

func (w *Workspace) Write(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// Close removes the directory and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}
