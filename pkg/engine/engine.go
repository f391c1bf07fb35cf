// Package engine implements the workflow consistency engine: the pure
// mutation operations that keep a document's Configuration and CanvasLayout
// mutually valid.
//
// Every operation has the shape (document, args) -> document'. Inputs are
// never mutated; the result is a fresh document value with the structural
// invariants restored, or a coded error with no partial mutation observable.
// Because documents are immutable by convention, callers snapshot history by
// simply keeping the previous value.
//
// # Identity Stability
//
// Transition identities are positional. Deleting a transition shifts every
// later transition of the same source state down one index, so those
// transitions acquire new canonical ids; deleting a state does the same to
// any source state that loses inbound transitions in the cascade. The engine
// re-keys the layout's visual records accordingly, but ids held outside the
// document become stale and must be re-resolved after any delete.
package engine

import (
	"slices"
	"time"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// AddState adds a new state and its layout entry at the given position.
// Fails with DUPLICATE_STATE when the id is taken and UNKNOWN_STATE when a
// transition of the new state targets an undefined state. When the document
// had no initial state, the new state becomes initial.
func AddState(doc *workflow.Document, stateID string, def workflow.StateDefinition, position workflow.Point) (*workflow.Document, error) {
	if err := errors.ValidateStateID(stateID); err != nil {
		return nil, err
	}
	if doc.Configuration.HasState(stateID) {
		return nil, errors.New(errors.ErrCodeDuplicateState, "state %q already exists", stateID)
	}
	for i, t := range def.Transitions {
		if t.Next != stateID && !doc.Configuration.HasState(t.Next) {
			return nil, errors.New(errors.ErrCodeUnknownState, "transition %d targets undefined state %q", i, t.Next)
		}
	}

	out := doc.Clone()
	out.Configuration.States[stateID] = def.Clone()
	if out.Configuration.InitialState == "" {
		out.Configuration.InitialState = stateID
	}

	out.Layout.States[stateID] = workflow.StateLayout{Position: position}
	for i := range def.Transitions {
		out.Layout.Transitions = append(out.Layout.Transitions, workflow.TransitionLayout{
			ID: workflow.TransitionID(stateID, i),
		})
	}

	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// UpdateState replaces a state's display content (name, description) while
// keeping its id and transition sequence untouched. Ids are never renamed,
// so every transition identity derived from this state stays valid.
func UpdateState(doc *workflow.Document, stateID string, def workflow.StateDefinition) (*workflow.Document, error) {
	if !doc.Configuration.HasState(stateID) {
		return nil, errors.New(errors.ErrCodeUnknownState, "state %q does not exist", stateID)
	}

	out := doc.Clone()
	updated := out.Configuration.States[stateID]
	updated.Name = def.Name
	updated.Description = def.Description
	out.Configuration.States[stateID] = updated

	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// DeleteState removes a state and cascades the removal through the rest of
// the document: every remaining transition targeting the state is dropped,
// the state's layout entry and all affected visual records are removed, and
// visual records whose transition shifted index are re-keyed. Legacy "-to-"
// visual records stay untouched unless the cascade removed the transition
// they resolve to. When the deleted state was initial, the first remaining
// state id in sorted order becomes initial, or the empty string when no
// states remain.
func DeleteState(doc *workflow.Document, stateID string) (*workflow.Document, error) {
	if !doc.Configuration.HasState(stateID) {
		return nil, errors.New(errors.ErrCodeUnknownState, "state %q does not exist", stateID)
	}

	out := doc.Clone()
	delete(out.Configuration.States, stateID)
	delete(out.Layout.States, stateID)

	// Filter inbound transitions, remembering how surviving indices shift so
	// the visual records can follow.
	indexMap := make(map[string]map[int]int) // source -> old index -> new index
	for id, state := range out.Configuration.States {
		shifts := make(map[int]int, len(state.Transitions))
		kept := state.Transitions[:0]
		for i, t := range state.Transitions {
			if t.Next == stateID {
				continue
			}
			shifts[i] = len(kept)
			kept = append(kept, t)
		}
		state.Transitions = kept
		out.Configuration.States[id] = state
		indexMap[id] = shifts
	}

	records := out.Layout.Transitions[:0]
	for _, rec := range out.Layout.Transitions {
		source, index, ok := workflow.ParseTransitionID(rec.ID)
		if !ok {
			// Legacy "-to-" records keep their label and handle data as
			// long as they still resolve against the remaining states.
			if _, err := workflow.MigrateLegacyID(rec.ID, out.Configuration.States); err == nil {
				records = append(records, rec)
			}
			continue
		}
		if source == stateID {
			continue
		}
		newIndex, kept := indexMap[source][index]
		if !kept {
			continue
		}
		rec.ID = workflow.TransitionID(source, newIndex)
		records = append(records, rec)
	}
	out.Layout.Transitions = records

	if out.Configuration.InitialState == stateID {
		out.Configuration.InitialState = ""
		if ids := out.Configuration.StateIDs(); len(ids) > 0 {
			out.Configuration.InitialState = ids[0]
		}
	}

	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// AddTransition appends a transition to the source state's sequence and
// creates its visual record with the given label offset. The new canonical
// id (source plus the old sequence length) is returned alongside the
// document.
func AddTransition(doc *workflow.Document, sourceStateID string, def workflow.TransitionDefinition, labelPosition workflow.Point) (*workflow.Document, string, error) {
	state, ok := doc.Configuration.States[sourceStateID]
	if !ok {
		return nil, "", errors.New(errors.ErrCodeUnknownState, "state %q does not exist", sourceStateID)
	}
	if !doc.Configuration.HasState(def.Next) {
		return nil, "", errors.New(errors.ErrCodeUnknownState, "transition targets undefined state %q", def.Next)
	}

	out := doc.Clone()
	id := workflow.TransitionID(sourceStateID, len(state.Transitions))

	updated := out.Configuration.States[sourceStateID]
	updated.Transitions = append(updated.Transitions, def.Clone())
	out.Configuration.States[sourceStateID] = updated

	out.Layout.Transitions = append(out.Layout.Transitions, workflow.TransitionLayout{
		ID:            id,
		LabelPosition: labelPosition,
	})

	out.UpdatedAt = time.Now().UTC()
	return out, id, nil
}

// UpdateTransition replaces the transition a canonical id addresses.
// An empty Next in the new definition preserves the current target, so
// callers editing guard or processor metadata need not re-state it.
func UpdateTransition(doc *workflow.Document, transitionID string, def workflow.TransitionDefinition) (*workflow.Document, error) {
	source, index, ok := workflow.ParseTransitionID(transitionID)
	if !ok || !workflow.ValidateTransitionID(transitionID, doc.Configuration.States) {
		return nil, errors.New(errors.ErrCodeUnknownTransition, "transition %q does not exist", transitionID)
	}

	next := def.Next
	if next == "" {
		next = doc.Configuration.States[source].Transitions[index].Next
	}
	if !doc.Configuration.HasState(next) {
		return nil, errors.New(errors.ErrCodeUnknownState, "transition targets undefined state %q", next)
	}

	out := doc.Clone()
	updated := out.Configuration.States[source]
	replacement := def.Clone()
	replacement.Next = next
	updated.Transitions[index] = replacement
	out.Configuration.States[source] = updated

	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// DeleteTransition removes the transition a canonical id addresses along
// with its visual record. Transitions of the same source state with a
// higher index shift down one position and acquire new canonical ids; their
// visual records are re-keyed to match. Externally held ids for that state
// past the removal point are stale afterwards.
func DeleteTransition(doc *workflow.Document, transitionID string) (*workflow.Document, error) {
	source, index, ok := workflow.ParseTransitionID(transitionID)
	if !ok || !workflow.ValidateTransitionID(transitionID, doc.Configuration.States) {
		return nil, errors.New(errors.ErrCodeUnknownTransition, "transition %q does not exist", transitionID)
	}

	out := doc.Clone()
	updated := out.Configuration.States[source]
	updated.Transitions = slices.Delete(updated.Transitions, index, index+1)
	out.Configuration.States[source] = updated

	records := out.Layout.Transitions[:0]
	for _, rec := range out.Layout.Transitions {
		recSource, recIndex, ok := workflow.ParseTransitionID(rec.ID)
		if !ok {
			// A legacy record survives unless the deleted transition was
			// the last one it could resolve to.
			if _, err := workflow.MigrateLegacyID(rec.ID, out.Configuration.States); err == nil {
				records = append(records, rec)
			}
			continue
		}
		if recSource == source {
			if recIndex == index {
				continue
			}
			if recIndex > index {
				rec.ID = workflow.TransitionID(source, recIndex-1)
			}
		}
		records = append(records, rec)
	}
	out.Layout.Transitions = records

	out.UpdatedAt = time.Now().UTC()
	return out, nil
}
