package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// FileStore persists workflow halves as JSON files in a directory, one pair
// of files per workflow. Suitable for CLI usage and single-instance
// deployments.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "creating store directory")
	}
	return &FileStore{dir: dir}, nil
}

// LoadConfiguration retrieves the business half of a workflow.
func (s *FileStore) LoadConfiguration(ctx context.Context, workflowID string) (ConfigurationRecord, error) {
	var rec ConfigurationRecord
	if err := s.read(workflowID, "configuration", &rec); err != nil {
		return ConfigurationRecord{}, err
	}
	return rec, nil
}

// LoadLayout retrieves the visual half of a workflow.
func (s *FileStore) LoadLayout(ctx context.Context, workflowID string) (workflow.CanvasLayout, error) {
	var l workflow.CanvasLayout
	if err := s.read(workflowID, "layout", &l); err != nil {
		return workflow.CanvasLayout{}, err
	}
	if l.States == nil {
		l.States = make(map[string]workflow.StateLayout)
	}
	return l, nil
}

// SaveConfiguration stores the business half of a workflow.
func (s *FileStore) SaveConfiguration(ctx context.Context, workflowID string, rec ConfigurationRecord) error {
	return s.write(workflowID, "configuration", rec)
}

// SaveLayout stores the visual half of a workflow.
func (s *FileStore) SaveLayout(ctx context.Context, workflowID string, l workflow.CanvasLayout) error {
	return s.write(workflowID, "layout", l)
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) read(workflowID, half string, v any) error {
	path, err := s.path(workflowID, half)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return notFound(workflowID, half)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "reading %s", half)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "decoding %s of workflow %q", half, workflowID)
	}
	return nil
}

func (s *FileStore) write(workflowID, half string, v any) error {
	path, err := s.path(workflowID, half)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encoding %s", half)
	}

	// Write-then-rename so a crash mid-write never corrupts the stored half.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "writing %s", half)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "writing %s", half)
	}
	return nil
}

// path converts a workflow id and half to a file path. Workflow ids are
// validated so hostile ids cannot escape the store directory.
func (s *FileStore) path(workflowID, half string) (string, error) {
	if err := errors.ValidateWorkflowID(workflowID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, workflowID+"."+half+".json"), nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
