package store

import (
	"context"
	"sync"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// MemoryStore keeps documents in process memory. Used in tests and for the
// server's default development backend; nothing survives a restart.
type MemoryStore struct {
	mu             sync.RWMutex
	configurations map[string]ConfigurationRecord
	layouts        map[string]workflow.CanvasLayout
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configurations: make(map[string]ConfigurationRecord),
		layouts:        make(map[string]workflow.CanvasLayout),
	}
}

// LoadConfiguration retrieves the business half of a workflow.
func (s *MemoryStore) LoadConfiguration(ctx context.Context, workflowID string) (ConfigurationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.configurations[workflowID]
	if !ok {
		return ConfigurationRecord{}, notFound(workflowID, "configuration")
	}
	return rec.Clone(), nil
}

// LoadLayout retrieves the visual half of a workflow.
func (s *MemoryStore) LoadLayout(ctx context.Context, workflowID string) (workflow.CanvasLayout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[workflowID]
	if !ok {
		return workflow.CanvasLayout{}, notFound(workflowID, "layout")
	}
	return l.Clone(), nil
}

// SaveConfiguration stores the business half of a workflow.
func (s *MemoryStore) SaveConfiguration(ctx context.Context, workflowID string, rec ConfigurationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configurations[workflowID] = rec.Clone()
	return nil
}

// SaveLayout stores the visual half of a workflow.
func (s *MemoryStore) SaveLayout(ctx context.Context, workflowID string, l workflow.CanvasLayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[workflowID] = l.Clone()
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
