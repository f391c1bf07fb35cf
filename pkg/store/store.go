// Package store provides persistence backends for workflow documents.
//
// A document's two halves are saved independently: business edits persist
// the configuration, canvas edits persist the layout. The Store interface
// mirrors that split so the session layer can write only the half an
// operation touched.
//
// Implementations:
//   - memory: in-memory storage for development and tests
//   - file: JSON files in a directory for CLI usage
//   - mongo: MongoDB collection for production deployments
//   - redis: Redis keys for multi-instance deployments
package store

import (
	"context"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// ConfigurationRecord is the persisted business half of a workflow: the
// configuration plus the entity reference it belongs to. The entity
// reference travels with the configuration so it survives across sessions;
// the layout half stays purely visual.
type ConfigurationRecord struct {
	EntityRef     string                 `json:"entityRef" bson:"entityRef"`
	Configuration workflow.Configuration `json:"configuration" bson:"configuration"`
}

// Clone returns a record whose configuration shares no mutable state with
// the original.
func (r ConfigurationRecord) Clone() ConfigurationRecord {
	r.Configuration = r.Configuration.Clone()
	return r
}

// Store is the interface for workflow persistence backends.
//
// Load methods return a NOT_FOUND coded error when the workflow half does
// not exist. Save methods create or replace; there is no versioning or
// conflict detection, the last write wins.
type Store interface {
	// LoadConfiguration retrieves the business half of a workflow.
	LoadConfiguration(ctx context.Context, workflowID string) (ConfigurationRecord, error)

	// LoadLayout retrieves the visual half of a workflow.
	LoadLayout(ctx context.Context, workflowID string) (workflow.CanvasLayout, error)

	// SaveConfiguration stores the business half of a workflow.
	SaveConfiguration(ctx context.Context, workflowID string, rec ConfigurationRecord) error

	// SaveLayout stores the visual half of a workflow.
	SaveLayout(ctx context.Context, workflowID string, l workflow.CanvasLayout) error

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// notFound builds the coded error every backend returns for a missing half.
func notFound(workflowID, half string) error {
	return errors.New(errors.ErrCodeNotFound, "workflow %q has no stored %s", workflowID, half)
}

// IsNotFound reports whether err is a missing-workflow error from any
// backend.
func IsNotFound(err error) bool {
	return errors.GetCode(err) == errors.ErrCodeNotFound
}
