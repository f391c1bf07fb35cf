// Package history provides per-workflow bounded undo/redo stacks of document
// snapshots.
//
// A Store holds one undo/redo stack pair per workflow id, created lazily on
// first use and discarded with [Store.Release] when the workflow stops being
// resident. The store is an explicit object handed to the editing session,
// not package-level state, so its lifecycle is tied to workflow selection.
//
// Because engine operations return fresh document values, a snapshot is just
// the previous value; no copying happens on push.
//
// # Contract
//
// Callers must not push the document change produced by [Store.Undo] or
// [Store.Redo] itself. The session layer suppresses the push on restore,
// otherwise every undo would grow the redo stack's mirror image
// indefinitely.
package history

import (
	"slices"
	"sync"
	"time"

	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// DefaultLimit bounds each undo stack when no explicit limit is configured.
const DefaultLimit = 50

// Entry is a single history record: the document as it was before an edit,
// plus a human-readable description of that edit.
type Entry struct {
	Snapshot    *workflow.Document
	Description string
	Timestamp   time.Time
}

// stackPair holds the two stacks of one workflow. The last element is the
// top of the stack.
type stackPair struct {
	undo []Entry
	redo []Entry
}

// Store owns the undo/redo stacks of all resident workflows.
// It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	limit  int
	stacks map[string]*stackPair
}

// NewStore creates a history store. A non-positive limit selects
// DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:  limit,
		stacks: make(map[string]*stackPair),
	}
}

// Push records snapshot as the state prior to an edit described by
// description. The redo stack is cleared: a new edit invalidates the redo
// branch. When the undo stack exceeds the configured bound, the oldest
// entry is evicted.
func (s *Store) Push(workflowID string, snapshot *workflow.Document, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pair(workflowID)
	p.undo = append(p.undo, Entry{
		Snapshot:    snapshot,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
	if len(p.undo) > s.limit {
		p.undo = slices.Delete(p.undo, 0, len(p.undo)-s.limit)
	}
	p.redo = nil
}

// Undo pops the most recent snapshot, pushing current onto the redo stack so
// the step can be replayed. Returns nil when there is nothing to undo.
func (s *Store) Undo(workflowID string, current *workflow.Document) *workflow.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pair(workflowID)
	if len(p.undo) == 0 {
		return nil
	}

	top := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	p.redo = append(p.redo, Entry{
		Snapshot:    current,
		Description: top.Description,
		Timestamp:   time.Now().UTC(),
	})
	return top.Snapshot
}

// Redo pops the most recently undone snapshot, pushing current back onto the
// undo stack. Returns nil when there is nothing to redo.
func (s *Store) Redo(workflowID string, current *workflow.Document) *workflow.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pair(workflowID)
	if len(p.redo) == 0 {
		return nil
	}

	top := p.redo[len(p.redo)-1]
	p.redo = p.redo[:len(p.redo)-1]
	p.undo = append(p.undo, Entry{
		Snapshot:    current,
		Description: top.Description,
		Timestamp:   time.Now().UTC(),
	})
	return top.Snapshot
}

// CanUndo reports whether the workflow has anything to undo.
func (s *Store) CanUndo(workflowID string) bool { return s.UndoCount(workflowID) > 0 }

// CanRedo reports whether the workflow has anything to redo.
func (s *Store) CanRedo(workflowID string) bool { return s.RedoCount(workflowID) > 0 }

// UndoCount returns the undo stack depth.
func (s *Store) UndoCount(workflowID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.stacks[workflowID]; ok {
		return len(p.undo)
	}
	return 0
}

// RedoCount returns the redo stack depth.
func (s *Store) RedoCount(workflowID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.stacks[workflowID]; ok {
		return len(p.redo)
	}
	return 0
}

// Entries returns a copy of the undo stack, most recent last. The snapshots
// themselves are shared; callers treat documents as immutable.
func (s *Store) Entries(workflowID string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.stacks[workflowID]; ok {
		return slices.Clone(p.undo)
	}
	return nil
}

// Release discards both stacks of a workflow. Called when the workflow
// stops being resident; history never survives deselection.
func (s *Store) Release(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stacks, workflowID)
}

func (s *Store) pair(workflowID string) *stackPair {
	p, ok := s.stacks[workflowID]
	if !ok {
		p = &stackPair{}
		s.stacks[workflowID] = p
	}
	return p
}
