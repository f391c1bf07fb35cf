package workflow

import (
	"encoding/json"
	"slices"
	"time"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Execution modes for transition processors.
const (
	ExecutionModeSync     = "SYNC"
	ExecutionModeAsync    = "ASYNC"
	ExecutionModeAsyncNew = "ASYNC_NEW_TX"
)

// Criterion operators supported by guard predicates.
const (
	OperatorEquals      = "EQUALS"
	OperatorNotEquals   = "NOT_EQUALS"
	OperatorGreaterThan = "GREATER_THAN"
	OperatorLessThan    = "LESS_THAN"
	OperatorContains    = "CONTAINS"
)

// DefaultProcessorTimeoutMs is applied when a processor omits its timeout.
const DefaultProcessorTimeoutMs = 5000

// =============================================================================
// Configuration - Functional Specification
// =============================================================================

// Configuration is the functional specification of a workflow: its states,
// transitions, and guard metadata. It is one half of a Document; the purely
// visual overlay lives in CanvasLayout.
//
// The JSON shape is the persisted/exported file format. Field names must be
// preserved to remain interoperable with previously exported files.
type Configuration struct {
	Name         string                     `json:"name" bson:"name"`
	Version      string                     `json:"version" bson:"version"`
	InitialState string                     `json:"initialState" bson:"initialState"`
	States       map[string]StateDefinition `json:"states" bson:"states"`
}

// StateDefinition describes a single state and its outgoing transitions.
// The transition slice order is significant: it is the index space for
// transition identities.
type StateDefinition struct {
	Name        string                 `json:"name" bson:"name"`
	Description string                 `json:"description,omitempty" bson:"description,omitempty"`
	Transitions []TransitionDefinition `json:"transitions" bson:"transitions"`
}

// TransitionDefinition is a directed, ordered edge to the Next state,
// carrying an optional guard (Criterion) and side effects (Processors).
type TransitionDefinition struct {
	Name       string      `json:"name" bson:"name"`
	Next       string      `json:"next" bson:"next"`
	Manual     bool        `json:"manual" bson:"manual"`
	Disabled   bool        `json:"disabled" bson:"disabled"`
	Criterion  *Criterion  `json:"criterion,omitempty" bson:"criterion,omitempty"`
	Processors []Processor `json:"processors,omitempty" bson:"processors,omitempty"`
}

// Criterion is a guard predicate evaluated against entity fields before a
// transition may fire.
type Criterion struct {
	Field    string `json:"field" bson:"field"`
	Operator string `json:"operator" bson:"operator"`
	Value    any    `json:"value" bson:"value"`
}

// Processor describes a side effect executed when a transition fires.
//
// Config is an opaque JSON payload passed through unmodified: recognized
// processor kinds carry structured settings, unrecognized kinds survive a
// round trip untouched for forward compatibility.
type Processor struct {
	Name          string          `json:"name" bson:"name"`
	ExecutionMode string          `json:"executionMode" bson:"executionMode"`
	TimeoutMs     int             `json:"timeoutMs,omitempty" bson:"timeoutMs,omitempty"`
	Config        json.RawMessage `json:"config,omitempty" bson:"config,omitempty"`
}

// IsSync reports whether the processor runs inside the transition.
func (p Processor) IsSync() bool { return p.ExecutionMode == ExecutionModeSync }

// Timeout returns the configured timeout, or the default when unset.
func (p Processor) Timeout() time.Duration {
	ms := p.TimeoutMs
	if ms <= 0 {
		ms = DefaultProcessorTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// =============================================================================
// CanvasLayout - Visual Overlay
// =============================================================================

// CanvasLayout is the purely visual overlay keyed to configuration state and
// transition ids: node positions, handle anchors, and label offsets.
type CanvasLayout struct {
	States      map[string]StateLayout `json:"states" bson:"states"`
	Transitions []TransitionLayout     `json:"transitions" bson:"transitions"`
}

// StateLayout holds the canvas placement of a single state node.
// Position is the node's top-left corner, matching the canvas convention.
type StateLayout struct {
	Position   Point          `json:"position" bson:"position"`
	Properties map[string]any `json:"properties,omitempty" bson:"properties,omitempty"`
}

// TransitionLayout holds the visual record of a single transition. ID must
// equal a canonical transition identity derivable from the configuration.
type TransitionLayout struct {
	ID            string `json:"id" bson:"id"`
	LabelPosition Point  `json:"labelPosition" bson:"labelPosition"`
	SourceHandle  string `json:"sourceHandle,omitempty" bson:"sourceHandle,omitempty"`
	TargetHandle  string `json:"targetHandle,omitempty" bson:"targetHandle,omitempty"`
}

// Point is a canvas coordinate pair.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// =============================================================================
// Structural Queries
// =============================================================================

// StateIDs returns the configuration's state ids in sorted order.
// Sorting makes iteration deterministic; the map itself carries no order.
func (c Configuration) StateIDs() []string {
	ids := make([]string, 0, len(c.States))
	for id := range c.States {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// HasState reports whether the configuration defines the given state.
func (c Configuration) HasState(id string) bool {
	_, ok := c.States[id]
	return ok
}

// TransitionCount returns the total number of transitions across all states.
func (c Configuration) TransitionCount() int {
	n := 0
	for _, s := range c.States {
		n += len(s.Transitions)
	}
	return n
}

// TerminalStates returns the ids of states with no outgoing transitions,
// in sorted order. Terminal is derived, not separately flagged.
func (c Configuration) TerminalStates() []string {
	var ids []string
	for id, s := range c.States {
		if len(s.Transitions) == 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// TransitionLayoutIndex returns the position of the visual record with the
// given id, or -1 when absent.
func (l CanvasLayout) TransitionLayoutIndex(id string) int {
	return slices.IndexFunc(l.Transitions, func(t TransitionLayout) bool { return t.ID == id })
}

// =============================================================================
// Deep Copies
// =============================================================================

// Clone returns a deep copy of the configuration. Mutation operations copy
// before editing so that prior snapshots stay intact.
func (c Configuration) Clone() Configuration {
	out := c
	out.States = make(map[string]StateDefinition, len(c.States))
	for id, s := range c.States {
		out.States[id] = s.Clone()
	}
	return out
}

// Clone returns a deep copy of the state definition.
func (s StateDefinition) Clone() StateDefinition {
	out := s
	out.Transitions = make([]TransitionDefinition, len(s.Transitions))
	for i, t := range s.Transitions {
		out.Transitions[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of the transition definition.
func (t TransitionDefinition) Clone() TransitionDefinition {
	out := t
	if t.Criterion != nil {
		crit := *t.Criterion
		out.Criterion = &crit
	}
	if t.Processors != nil {
		out.Processors = make([]Processor, len(t.Processors))
		for i, p := range t.Processors {
			out.Processors[i] = p
			out.Processors[i].Config = slices.Clone(p.Config)
		}
	}
	return out
}

// Clone returns a deep copy of the layout.
func (l CanvasLayout) Clone() CanvasLayout {
	out := l
	out.States = make(map[string]StateLayout, len(l.States))
	for id, s := range l.States {
		cp := s
		if s.Properties != nil {
			cp.Properties = make(map[string]any, len(s.Properties))
			for k, v := range s.Properties {
				cp.Properties[k] = v
			}
		}
		out.States[id] = cp
	}
	out.Transitions = slices.Clone(l.Transitions)
	return out
}
