package workflow

import (
	"strconv"
	"strings"

	"github.com/pschleger/workflow-canvas/pkg/errors"
)

// =============================================================================
// Transition Identity
// =============================================================================
//
// The canonical transition identity is "<sourceStateID>-<index>", where index
// is the transition's zero-based position in its source state's transition
// slice. The id is derived from array position, never stored as a field.
//
// Parsing splits at the last hyphen. This is unambiguous even when state ids
// themselves contain hyphens, because the index suffix is purely numeric and
// the split point is therefore uniquely the final hyphen.

// TransitionID generates the canonical identity for the transition at index
// in the given source state.
func TransitionID(sourceStateID string, index int) string {
	return sourceStateID + "-" + strconv.Itoa(index)
}

// ParseTransitionID splits a canonical transition id into its source state id
// and index. ok is false when the id has no hyphen or the suffix after the
// last hyphen is not a non-negative integer.
func ParseTransitionID(id string) (sourceStateID string, index int, ok bool) {
	cut := strings.LastIndexByte(id, '-')
	if cut <= 0 || cut == len(id)-1 {
		return "", 0, false
	}

	suffix := id[cut+1:]
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return "", 0, false
	}
	// Atoi accepts leading signs and zero padding; the canonical form
	// carries neither, and accepting them would let two distinct id strings
	// alias one transition. Parse is the exact inverse of TransitionID.
	if suffix[0] == '+' || (len(suffix) > 1 && suffix[0] == '0') {
		return "", 0, false
	}

	return id[:cut], n, true
}

// ValidateTransitionID reports whether id parses and addresses a live
// transition: the source state exists and the index is within bounds.
func ValidateTransitionID(id string, states map[string]StateDefinition) bool {
	source, index, ok := ParseTransitionID(id)
	if !ok {
		return false
	}
	state, exists := states[source]
	return exists && index < len(state.Transitions)
}

// ResolveTransition returns the transition a canonical id addresses, or an
// error when the id is malformed or dangling.
func ResolveTransition(id string, states map[string]StateDefinition) (TransitionDefinition, error) {
	source, index, ok := ParseTransitionID(id)
	if !ok {
		return TransitionDefinition{}, errors.New(errors.ErrCodeMalformedIdentity, "malformed transition id %q", id)
	}
	state, exists := states[source]
	if !exists {
		return TransitionDefinition{}, errors.New(errors.ErrCodeUnknownTransition, "transition %q: state %q does not exist", id, source)
	}
	if index >= len(state.Transitions) {
		return TransitionDefinition{}, errors.New(errors.ErrCodeUnknownTransition, "transition %q: index %d out of range (state has %d transitions)", id, index, len(state.Transitions))
	}
	return state.Transitions[index], nil
}

// legacySeparator is the token used by the retired name-based identity
// scheme "<source>-to-<target>".
const legacySeparator = "-to-"

// MigrateLegacyID converts a legacy "<source>-to-<target>" transition id to
// its canonical index-based form.
//
// The legacy format is inherently ambiguous: a state may have parallel
// transitions to the same target, and state ids may themselves contain
// "-to-". Migration splits at the first occurrence of the token and takes
// the first transition from source whose Next matches the target. This is a
// known limitation of the retired scheme, kept as-is rather than guessed
// around; migrate ids once and use canonical ids from then on.
func MigrateLegacyID(legacyID string, states map[string]StateDefinition) (string, error) {
	cut := strings.Index(legacyID, legacySeparator)
	if cut <= 0 || cut+len(legacySeparator) >= len(legacyID) {
		return "", errors.New(errors.ErrCodeMalformedIdentity, "malformed legacy transition id %q", legacyID)
	}

	source := legacyID[:cut]
	target := legacyID[cut+len(legacySeparator):]

	state, exists := states[source]
	if !exists {
		return "", errors.New(errors.ErrCodeUnknownState, "legacy id %q: state %q does not exist", legacyID, source)
	}

	for i, t := range state.Transitions {
		if t.Next == target {
			return TransitionID(source, i), nil
		}
	}
	return "", errors.New(errors.ErrCodeUnknownTransition, "legacy id %q: no transition from %q to %q", legacyID, source, target)
}
