// Package session manages the editing lifecycle of a single resident
// workflow document.
//
// A Session owns the current document value, its undo/redo history, and a
// persistence backend. Edits run through [Session.Apply]: the engine
// operation produces a fresh document, the prior value is pushed to
// history, and both halves are persisted in the background.
//
// # Persistence model
//
// Saves are optimistic. The in-memory document is adopted immediately and
// the write happens on a background goroutine; a failed save is logged and
// the edit is NOT rolled back. The canvas keeps working against the
// in-memory state and a later save can still succeed. Background saves are
// serialized so a slow write cannot be overtaken by a newer one.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/history"
	"github.com/pschleger/workflow-canvas/pkg/layout"
	"github.com/pschleger/workflow-canvas/pkg/store"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// DefaultSaveTimeout bounds each background persistence write.
const DefaultSaveTimeout = 5 * time.Second

// Options wires a session's collaborators.
type Options struct {
	// Store persists the document. Required.
	Store store.Store

	// History holds the undo/redo stacks. Required.
	History *history.Store

	// Logger receives persistence failures and session lifecycle events.
	// Defaults to log.Default().
	Logger *log.Logger

	// SaveTimeout bounds each background save. Defaults to
	// DefaultSaveTimeout.
	SaveTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = DefaultSaveTimeout
	}
	return o
}

// Session is the editing session of one workflow. It is safe for
// concurrent use; edits are serialized on an internal mutex.
type Session struct {
	opts       Options
	workflowID string

	mu  sync.Mutex
	doc *workflow.Document

	// persistSeq stamps each save; stale saves are skipped under persistMu
	// so a slow write never overwrites a newer one.
	persistSeq     uint64
	persistMu      sync.Mutex
	savedCfgSeq    uint64
	savedCanvasSeq uint64
	pending        sync.WaitGroup
}

// Open loads both halves of a stored workflow and makes it resident. The
// entity reference persisted with the configuration half is restored onto
// the document.
func Open(ctx context.Context, opts Options, workflowID string) (*Session, error) {
	opts = opts.withDefaults()

	rec, err := opts.Store.LoadConfiguration(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	l, err := opts.Store.LoadLayout(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	doc, err := workflow.NewDocument(workflowID, rec.EntityRef, rec.Configuration, l)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("workflow resident", "workflow", workflowID, "states", len(rec.Configuration.States))
	return &Session{opts: opts, workflowID: workflowID, doc: doc}, nil
}

// OpenDocument makes an already-built document resident (typically an
// import) and persists both halves.
func OpenDocument(ctx context.Context, opts Options, doc *workflow.Document) (*Session, error) {
	opts = opts.withDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s := &Session{opts: opts, workflowID: doc.ID, doc: doc}
	s.persist(doc, true, true)
	return s, nil
}

// WorkflowID returns the id of the resident workflow.
func (s *Session) WorkflowID() string { return s.workflowID }

// Document returns the current document value. Callers treat it as
// immutable; every edit produces a fresh value.
func (s *Session) Document() *workflow.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Apply runs an engine operation against the current document. On success
// the prior value is pushed to history under description, the result is
// adopted, and both halves are persisted in the background. On error the
// session is unchanged.
func (s *Session) Apply(ctx context.Context, description string, op func(*workflow.Document) (*workflow.Document, error)) (*workflow.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.doc)
	if err != nil {
		return nil, err
	}

	s.opts.History.Push(s.workflowID, s.doc, description)
	s.doc = next
	s.persist(next, true, true)
	return next, nil
}

// MoveState records a new canvas position for a state. This is a
// layout-only edit, so only the visual half is persisted.
func (s *Session) MoveState(ctx context.Context, stateID string, position workflow.Point) (*workflow.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc.Layout.States[stateID]; !ok {
		return nil, errors.New(errors.ErrCodeUnknownState, "state %q does not exist", stateID)
	}

	next := s.doc.Clone()
	st := next.Layout.States[stateID]
	st.Position = position
	next.Layout.States[stateID] = st
	next.UpdatedAt = time.Now().UTC()

	s.opts.History.Push(s.workflowID, s.doc, "move "+stateID)
	s.doc = next
	s.persist(next, false, true)
	return next, nil
}

// AutoLayout recomputes every state position and persists the visual half.
func (s *Session) AutoLayout(ctx context.Context, opts layout.Options) (*workflow.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := layout.Run(s.doc.Configuration, opts)
	if len(res.Positions) == 0 {
		return s.doc, nil
	}
	next := layout.Apply(s.doc, res, opts)

	s.opts.History.Push(s.workflowID, s.doc, "auto-layout")
	s.doc = next
	s.persist(next, false, true)
	return next, nil
}

// Undo restores the most recent history snapshot. The restore itself is
// not pushed to history, otherwise undo and redo would feed each other
// forever. Returns the current document unchanged when there is nothing to
// undo.
func (s *Session) Undo(ctx context.Context) *workflow.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.opts.History.Undo(s.workflowID, s.doc)
	if prev == nil {
		return s.doc
	}
	s.doc = prev
	s.persist(prev, true, true)
	return prev
}

// Redo replays the most recently undone edit. Returns the current document
// unchanged when there is nothing to redo.
func (s *Session) Redo(ctx context.Context) *workflow.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.opts.History.Redo(s.workflowID, s.doc)
	if next == nil {
		return s.doc
	}
	s.doc = next
	s.persist(next, true, true)
	return next
}

// CanUndo reports whether the session has anything to undo.
func (s *Session) CanUndo() bool { return s.opts.History.CanUndo(s.workflowID) }

// CanRedo reports whether the session has anything to redo.
func (s *Session) CanRedo() bool { return s.opts.History.CanRedo(s.workflowID) }

// Flush blocks until every background save started so far has finished.
// Tests and command-line flows use it to observe persisted state.
func (s *Session) Flush() {
	s.pending.Wait()
}

// Close waits for pending saves and discards the workflow's history. The
// store is shared and stays open.
func (s *Session) Close() {
	s.pending.Wait()
	s.opts.History.Release(s.workflowID)
	s.opts.Logger.Debug("workflow released", "workflow", s.workflowID)
}

// persist writes the selected halves on a background goroutine. Failures
// are logged, never propagated; the in-memory document is already adopted.
// Callers hold s.mu, which makes the sequence stamp match edit order.
func (s *Session) persist(doc *workflow.Document, configuration, canvas bool) {
	s.persistSeq++
	seq := s.persistSeq

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.persistMu.Lock()
		defer s.persistMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
		defer cancel()

		if configuration && seq > s.savedCfgSeq {
			rec := store.ConfigurationRecord{
				EntityRef:     doc.EntityRef,
				Configuration: doc.Configuration,
			}
			if err := s.opts.Store.SaveConfiguration(ctx, s.workflowID, rec); err != nil {
				s.opts.Logger.Error("failed to save configuration", "workflow", s.workflowID, "err", err)
			} else {
				s.savedCfgSeq = seq
			}
		}
		if canvas && seq > s.savedCanvasSeq {
			if err := s.opts.Store.SaveLayout(ctx, s.workflowID, doc.Layout); err != nil {
				s.opts.Logger.Error("failed to save layout", "workflow", s.workflowID, "err", err)
			} else {
				s.savedCanvasSeq = seq
			}
		}
	}()
}
