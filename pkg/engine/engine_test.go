package engine

import (
	"testing"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// orderDocument builds the canonical test fixture: pending -> sent with a
// loop back, plus a terminal cancelled state.
func orderDocument(t *testing.T) *workflow.Document {
	t.Helper()
	c := workflow.Configuration{
		Name:         "order",
		Version:      "1",
		InitialState: "pending",
		States: map[string]workflow.StateDefinition{
			"pending": {Name: "Pending", Transitions: []workflow.TransitionDefinition{
				{Name: "send", Next: "sent"},
				{Name: "cancel", Next: "cancelled", Manual: true},
			}},
			"sent":      {Name: "Sent", Transitions: []workflow.TransitionDefinition{{Name: "bounce", Next: "pending"}}},
			"cancelled": {Name: "Cancelled"},
		},
	}
	d, err := workflow.ImportDocument("orders/1", c)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}
	return d
}

func assertValid(t *testing.T, d *workflow.Document) {
	t.Helper()
	if err := d.Validate(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestAddState(t *testing.T) {
	doc := orderDocument(t)

	out, err := AddState(doc, "archived", workflow.StateDefinition{Name: "Archived"}, workflow.Point{X: 10, Y: 20})
	if err != nil {
		t.Fatalf("AddState: %v", err)
	}
	assertValid(t, out)

	if !out.Configuration.HasState("archived") {
		t.Error("archived not added")
	}
	if got := out.Layout.States["archived"].Position; got != (workflow.Point{X: 10, Y: 20}) {
		t.Errorf("position = %v, want {10 20}", got)
	}
	if doc.Configuration.HasState("archived") {
		t.Error("input document mutated")
	}
}

func TestAddStateDuplicate(t *testing.T) {
	doc := orderDocument(t)

	if _, err := AddState(doc, "pending", workflow.StateDefinition{}, workflow.Point{}); !errors.Is(err, errors.ErrCodeDuplicateState) {
		t.Fatalf("error = %v, want DUPLICATE_STATE", err)
	}
}

func TestAddStateBecomesInitialWhenEmpty(t *testing.T) {
	empty, err := workflow.ImportDocument("orders/1", workflow.Configuration{
		Name:   "blank",
		States: map[string]workflow.StateDefinition{},
	})
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	out, err := AddState(empty, "draft", workflow.StateDefinition{Name: "Draft"}, workflow.Point{})
	if err != nil {
		t.Fatalf("AddState: %v", err)
	}
	assertValid(t, out)

	if out.Configuration.InitialState != "draft" {
		t.Errorf("initialState = %q, want draft", out.Configuration.InitialState)
	}
}

func TestUpdateState(t *testing.T) {
	doc := orderDocument(t)

	out, err := UpdateState(doc, "pending", workflow.StateDefinition{Name: "Awaiting Dispatch", Description: "renamed"})
	if err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	assertValid(t, out)

	got := out.Configuration.States["pending"]
	if got.Name != "Awaiting Dispatch" || got.Description != "renamed" {
		t.Errorf("state = %+v, want updated display fields", got)
	}
	if len(got.Transitions) != 2 {
		t.Errorf("transitions = %d, want 2 (sequence untouched)", len(got.Transitions))
	}
	if doc.Configuration.States["pending"].Name != "Pending" {
		t.Error("input document mutated")
	}
}

func TestUpdateStateUnknown(t *testing.T) {
	doc := orderDocument(t)
	if _, err := UpdateState(doc, "ghost", workflow.StateDefinition{}); !errors.Is(err, errors.ErrCodeUnknownState) {
		t.Fatalf("error = %v, want UNKNOWN_STATE", err)
	}
}

func TestDeleteStateCascade(t *testing.T) {
	doc := orderDocument(t)

	out, err := DeleteState(doc, "sent")
	if err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	assertValid(t, out)

	if out.Configuration.HasState("sent") {
		t.Error("sent still present")
	}
	// pending loses its first transition (send -> sent); cancel shifts to index 0.
	pending := out.Configuration.States["pending"]
	if len(pending.Transitions) != 1 || pending.Transitions[0].Name != "cancel" {
		t.Errorf("pending transitions = %+v, want [cancel]", pending.Transitions)
	}
	if _, ok := out.Layout.States["sent"]; ok {
		t.Error("layout entry for sent not removed")
	}
	// The surviving cancel transition's visual record follows the shift.
	if out.Layout.TransitionLayoutIndex("pending-0") < 0 {
		t.Error("cancel visual record not re-keyed to pending-0")
	}
	if out.Layout.TransitionLayoutIndex("pending-1") >= 0 {
		t.Error("stale pending-1 visual record left behind")
	}
	if out.Configuration.InitialState != "pending" {
		t.Errorf("initialState = %q, want pending", out.Configuration.InitialState)
	}
}

func TestDeleteInitialStateReassigns(t *testing.T) {
	doc := orderDocument(t)

	out, err := DeleteState(doc, "pending")
	if err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	assertValid(t, out)

	// First remaining id in sorted order.
	if out.Configuration.InitialState != "cancelled" {
		t.Errorf("initialState = %q, want cancelled", out.Configuration.InitialState)
	}
}

func TestDeleteLastState(t *testing.T) {
	c := workflow.Configuration{
		Name:         "single",
		InitialState: "only",
		States:       map[string]workflow.StateDefinition{"only": {Name: "Only"}},
	}
	doc, err := workflow.ImportDocument("orders/1", c)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	out, err := DeleteState(doc, "only")
	if err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	assertValid(t, out)

	if out.Configuration.InitialState != "" {
		t.Errorf("initialState = %q, want empty", out.Configuration.InitialState)
	}
	if len(out.Configuration.States) != 0 || len(out.Layout.States) != 0 {
		t.Error("document not empty after deleting last state")
	}
}

func TestDeleteStateKeepsResolvableLegacyRecords(t *testing.T) {
	doc := orderDocument(t)

	// Pre-migration files can carry "-to-" visual records; give the loop
	// back its legacy form.
	idx := doc.Layout.TransitionLayoutIndex("sent-0")
	doc.Layout.Transitions[idx].ID = "sent-to-pending"
	doc.Layout.Transitions[idx].SourceHandle = "bottom"

	out, err := DeleteState(doc, "cancelled")
	if err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	assertValid(t, out)

	// The sent->pending transition is untouched by the delete, so its
	// legacy record must survive with its handle data.
	kept := out.Layout.TransitionLayoutIndex("sent-to-pending")
	if kept < 0 {
		t.Fatal("legacy record for an untouched transition was dropped")
	}
	if got := out.Layout.Transitions[kept].SourceHandle; got != "bottom" {
		t.Errorf("source handle = %q, want bottom", got)
	}
}

func TestDeleteStateDropsDanglingLegacyRecords(t *testing.T) {
	doc := orderDocument(t)

	idx := doc.Layout.TransitionLayoutIndex("pending-0")
	doc.Layout.Transitions[idx].ID = "pending-to-sent"

	out, err := DeleteState(doc, "sent")
	if err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	assertValid(t, out)

	// The cascade removed the send transition, so nothing resolves the
	// legacy record any more.
	if out.Layout.TransitionLayoutIndex("pending-to-sent") >= 0 {
		t.Error("dangling legacy record survived the cascade")
	}
}

func TestDeleteStateUnknown(t *testing.T) {
	doc := orderDocument(t)
	if _, err := DeleteState(doc, "ghost"); !errors.Is(err, errors.ErrCodeUnknownState) {
		t.Fatalf("error = %v, want UNKNOWN_STATE", err)
	}
}

func TestAddTransition(t *testing.T) {
	doc := orderDocument(t)

	out, id, err := AddTransition(doc, "cancelled", workflow.TransitionDefinition{Name: "reopen", Next: "pending"}, workflow.Point{X: 5})
	if err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	assertValid(t, out)

	if id != "cancelled-0" {
		t.Errorf("id = %q, want cancelled-0", id)
	}
	if got := len(out.Configuration.States["cancelled"].Transitions); got != 1 {
		t.Errorf("transitions = %d, want 1", got)
	}
	if out.Layout.TransitionLayoutIndex(id) < 0 {
		t.Error("visual record not created")
	}
	if len(doc.Configuration.States["cancelled"].Transitions) != 0 {
		t.Error("input document mutated")
	}
}

func TestAddTransitionAppendsAtEnd(t *testing.T) {
	doc := orderDocument(t)

	out, id, err := AddTransition(doc, "pending", workflow.TransitionDefinition{Name: "expire", Next: "cancelled"}, workflow.Point{})
	if err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	if id != "pending-2" {
		t.Errorf("id = %q, want pending-2 (new index = old length)", id)
	}
	assertValid(t, out)
}

func TestAddTransitionUnknownTarget(t *testing.T) {
	doc := orderDocument(t)
	if _, _, err := AddTransition(doc, "pending", workflow.TransitionDefinition{Name: "x", Next: "void"}, workflow.Point{}); !errors.Is(err, errors.ErrCodeUnknownState) {
		t.Fatalf("error = %v, want UNKNOWN_STATE", err)
	}
}

func TestUpdateTransition(t *testing.T) {
	doc := orderDocument(t)

	out, err := UpdateTransition(doc, "pending-0", workflow.TransitionDefinition{
		Name:   "dispatch",
		Next:   "sent",
		Manual: true,
		Criterion: &workflow.Criterion{
			Field:    "total",
			Operator: workflow.OperatorGreaterThan,
			Value:    100,
		},
	})
	if err != nil {
		t.Fatalf("UpdateTransition: %v", err)
	}
	assertValid(t, out)

	got := out.Configuration.States["pending"].Transitions[0]
	if got.Name != "dispatch" || !got.Manual || got.Criterion == nil {
		t.Errorf("transition = %+v, want replaced definition", got)
	}
}

func TestUpdateTransitionPreservesNext(t *testing.T) {
	doc := orderDocument(t)

	out, err := UpdateTransition(doc, "pending-0", workflow.TransitionDefinition{Name: "send-quickly"})
	if err != nil {
		t.Fatalf("UpdateTransition: %v", err)
	}

	if got := out.Configuration.States["pending"].Transitions[0].Next; got != "sent" {
		t.Errorf("next = %q, want sent (preserved)", got)
	}
}

func TestUpdateTransitionUnknown(t *testing.T) {
	doc := orderDocument(t)

	tests := []struct {
		name string
		id   string
	}{
		{name: "OutOfRange", id: "pending-9"},
		{name: "UnknownState", id: "ghost-0"},
		{name: "Malformed", id: "pending-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UpdateTransition(doc, tt.id, workflow.TransitionDefinition{}); !errors.Is(err, errors.ErrCodeUnknownTransition) {
				t.Fatalf("error = %v, want UNKNOWN_TRANSITION", err)
			}
		})
	}
}

func TestDeleteTransitionShiftsIndices(t *testing.T) {
	doc := orderDocument(t)

	out, err := DeleteTransition(doc, "pending-0")
	if err != nil {
		t.Fatalf("DeleteTransition: %v", err)
	}
	assertValid(t, out)

	pending := out.Configuration.States["pending"]
	if len(pending.Transitions) != 1 || pending.Transitions[0].Name != "cancel" {
		t.Errorf("transitions = %+v, want [cancel]", pending.Transitions)
	}
	// cancel was pending-1; after the splice it is pending-0.
	if out.Layout.TransitionLayoutIndex("pending-0") < 0 {
		t.Error("shifted visual record not re-keyed")
	}
	if out.Layout.TransitionLayoutIndex("pending-1") >= 0 {
		t.Error("stale visual record left behind")
	}
}

func TestDeleteTransitionPrunesLegacyRecords(t *testing.T) {
	doc := orderDocument(t)

	sendIdx := doc.Layout.TransitionLayoutIndex("pending-0")
	doc.Layout.Transitions[sendIdx].ID = "pending-to-sent"
	loopIdx := doc.Layout.TransitionLayoutIndex("sent-0")
	doc.Layout.Transitions[loopIdx].ID = "sent-to-pending"

	out, err := DeleteTransition(doc, "pending-0")
	if err != nil {
		t.Fatalf("DeleteTransition: %v", err)
	}
	assertValid(t, out)

	// send was the only pending->sent transition; its legacy record now
	// dangles and must go. The unrelated loop-back record stays.
	if out.Layout.TransitionLayoutIndex("pending-to-sent") >= 0 {
		t.Error("legacy record for the deleted transition survived")
	}
	if out.Layout.TransitionLayoutIndex("sent-to-pending") < 0 {
		t.Error("legacy record for an untouched transition was dropped")
	}
}

func TestDeleteTransitionUnknown(t *testing.T) {
	doc := orderDocument(t)
	if _, err := DeleteTransition(doc, "pending-7"); !errors.Is(err, errors.ErrCodeUnknownTransition) {
		t.Fatalf("error = %v, want UNKNOWN_TRANSITION", err)
	}
}

// Invariants 1-4 hold after any sequence of engine operations.
func TestOperationSequenceKeepsInvariants(t *testing.T) {
	doc := orderDocument(t)

	var err error
	doc, err = AddState(doc, "review", workflow.StateDefinition{Name: "Review"}, workflow.Point{X: 300})
	if err != nil {
		t.Fatalf("AddState: %v", err)
	}
	doc, _, err = AddTransition(doc, "review", workflow.TransitionDefinition{Name: "approve", Next: "sent"}, workflow.Point{})
	if err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	doc, _, err = AddTransition(doc, "review", workflow.TransitionDefinition{Name: "reject", Next: "cancelled"}, workflow.Point{})
	if err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	doc, err = DeleteTransition(doc, "review-0")
	if err != nil {
		t.Fatalf("DeleteTransition: %v", err)
	}
	doc, err = DeleteState(doc, "sent")
	if err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	doc, err = UpdateState(doc, "review", workflow.StateDefinition{Name: "Final Review"})
	if err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	assertValid(t, doc)
}
