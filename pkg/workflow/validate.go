package workflow

import (
	"github.com/pschleger/workflow-canvas/pkg/errors"
)

// Document invariants, restored by every engine operation and checked on
// import/load:
//
//  1. InitialState is a key of States, or States is empty and InitialState
//     is the empty string.
//  2. Every transition's Next is a key of States.
//  3. The layout contains exactly one position entry per state: no orphans,
//     no omissions.
//  4. Every transition visual record's id parses to a live (state, index)
//     location, or is a legacy "-to-" id that still resolves to one.
//
// Validation refuses a document with dangling references rather than
// repairing it. Silent repair would surprise a user who just imported a
// file; the error names the offending reference instead.

// ValidateConfiguration checks invariants 1 and 2 on the configuration alone.
func ValidateConfiguration(c Configuration) error {
	if len(c.States) == 0 {
		if c.InitialState != "" {
			return errors.New(errors.ErrCodeInvalidConfiguration, "initial state %q set on a configuration with no states", c.InitialState)
		}
		return nil
	}

	if !c.HasState(c.InitialState) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "initial state %q is not a defined state", c.InitialState)
	}

	for _, stateID := range c.StateIDs() {
		for i, t := range c.States[stateID].Transitions {
			if !c.HasState(t.Next) {
				return errors.New(errors.ErrCodeInvalidConfiguration, "transition %s targets undefined state %q", TransitionID(stateID, i), t.Next)
			}
		}
	}
	return nil
}

// ValidateLayout checks invariants 3 and 4: the layout must cover the
// configuration's states exactly and every transition visual record must
// address a live transition.
func ValidateLayout(c Configuration, l CanvasLayout) error {
	for _, stateID := range c.StateIDs() {
		if _, ok := l.States[stateID]; !ok {
			return errors.New(errors.ErrCodeInvalidConfiguration, "layout is missing a position for state %q", stateID)
		}
	}
	for stateID := range l.States {
		if !c.HasState(stateID) {
			return errors.New(errors.ErrCodeInvalidConfiguration, "layout positions unknown state %q", stateID)
		}
	}

	for _, t := range l.Transitions {
		if ValidateTransitionID(t.ID, c.States) {
			continue
		}
		// Files exported under the retired name-based scheme stay loadable;
		// MigrateLegacyIDs rewrites them to canonical form.
		if _, err := MigrateLegacyID(t.ID, c.States); err == nil {
			continue
		}
		return errors.New(errors.ErrCodeInvalidConfiguration, "layout references unknown transition %q", t.ID)
	}
	return nil
}

// Validate checks all four document invariants.
func (d *Document) Validate() error {
	if err := ValidateConfiguration(d.Configuration); err != nil {
		return err
	}
	return ValidateLayout(d.Configuration, d.Layout)
}
