package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/pschleger/workflow-canvas/pkg/errors"
)

// =============================================================================
// Document - Configuration + Layout Unit
// =============================================================================

// Document is the combined, invariant-respecting configuration-plus-layout
// unit the engine manipulates. It is immutable by convention: every engine
// operation produces a new Document value, which makes history snapshots a
// matter of keeping the previous value.
type Document struct {
	ID            string        `json:"id" bson:"_id"`
	EntityRef     string        `json:"entityRef" bson:"entityRef"`
	Configuration Configuration `json:"configuration" bson:"configuration"`
	Layout        CanvasLayout  `json:"layout" bson:"layout"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// NewDocument assembles a document from a configuration and layout fetched
// from a store. The document is validated; a configuration with dangling
// references is refused, not repaired.
func NewDocument(id, entityRef string, c Configuration, l CanvasLayout) (*Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	d := &Document{
		ID:            id,
		EntityRef:     entityRef,
		Configuration: c,
		Layout:        l,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ImportDocument constructs a document from an imported configuration alone,
// generating a default grid layout so invariant 3 holds from the start. The
// caller typically runs auto-layout immediately afterwards.
func ImportDocument(entityRef string, c Configuration) (*Document, error) {
	if err := ValidateConfiguration(c); err != nil {
		return nil, err
	}
	return NewDocument("", entityRef, c, DefaultLayout(c))
}

// DefaultLayout produces a placeholder layout covering the configuration:
// states on a fixed-pitch grid in sorted id order, one visual record per
// transition with a zero label offset.
func DefaultLayout(c Configuration) CanvasLayout {
	const (
		pitchX  = 220.0
		pitchY  = 140.0
		perRow  = 4
		originX = 40.0
		originY = 40.0
	)

	l := CanvasLayout{States: make(map[string]StateLayout, len(c.States))}
	for i, stateID := range c.StateIDs() {
		l.States[stateID] = StateLayout{Position: Point{
			X: originX + float64(i%perRow)*pitchX,
			Y: originY + float64(i/perRow)*pitchY,
		}}
		for j := range c.States[stateID].Transitions {
			l.Transitions = append(l.Transitions, TransitionLayout{
				ID: TransitionID(stateID, j),
			})
		}
	}
	return l
}

// Clone returns a deep copy of the document. History snapshots and engine
// operations rely on clones never sharing mutable state with the original.
func (d *Document) Clone() *Document {
	out := *d
	out.Configuration = d.Configuration.Clone()
	out.Layout = d.Layout.Clone()
	return &out
}

// Touch returns a copy with an updated modification timestamp.
func (d *Document) Touch(now time.Time) *Document {
	out := d.Clone()
	out.UpdatedAt = now.UTC()
	return out
}

// ResolveTransition looks up the transition a canonical id addresses within
// this document's configuration.
func (d *Document) ResolveTransition(id string) (TransitionDefinition, error) {
	return ResolveTransition(id, d.Configuration.States)
}

// MigrateLegacyIDs rewrites any legacy "-to-" transition ids in the layout's
// visual records to canonical index-based ids. It returns the new document
// and the number of rewritten records. Records that fail to migrate are
// reported, not dropped.
func (d *Document) MigrateLegacyIDs() (*Document, int, error) {
	out := d.Clone()
	migrated := 0
	for i, t := range out.Layout.Transitions {
		if ValidateTransitionID(t.ID, out.Configuration.States) {
			continue
		}
		canonical, err := MigrateLegacyID(t.ID, out.Configuration.States)
		if err != nil {
			return nil, 0, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "layout record %d", i)
		}
		out.Layout.Transitions[i].ID = canonical
		migrated++
	}
	return out, migrated, nil
}
