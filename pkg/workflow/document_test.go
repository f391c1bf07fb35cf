package workflow

import (
	"path/filepath"
	"testing"

	"github.com/pschleger/workflow-canvas/pkg/errors"
)

func TestImportDocument(t *testing.T) {
	c := validConfiguration()

	d, err := ImportDocument("orders/42", c)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	if d.ID == "" {
		t.Error("document id not generated")
	}
	if d.EntityRef != "orders/42" {
		t.Errorf("entityRef = %q, want orders/42", d.EntityRef)
	}
	if got := len(d.Layout.States); got != len(c.States) {
		t.Errorf("layout states = %d, want %d", got, len(c.States))
	}
	if got := len(d.Layout.Transitions); got != c.TransitionCount() {
		t.Errorf("layout transitions = %d, want %d", got, c.TransitionCount())
	}
	if err := d.Validate(); err != nil {
		t.Errorf("imported document invalid: %v", err)
	}
}

func TestImportDocumentRefusesInvalid(t *testing.T) {
	c := validConfiguration()
	c.InitialState = "archived"

	if _, err := ImportDocument("orders/42", c); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Fatalf("error = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestDocumentClone(t *testing.T) {
	c := validConfiguration()
	d, err := ImportDocument("orders/42", c)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	cp := d.Clone()

	// Mutating the clone must not leak into the original.
	s := cp.Configuration.States["pending"]
	s.Transitions[0].Next = "elsewhere"
	cp.Configuration.States["pending"] = s
	cp.Layout.Transitions[0].ID = "tampered"
	delete(cp.Layout.States, "sent")

	if d.Configuration.States["pending"].Transitions[0].Next != "sent" {
		t.Error("clone shares transition slice with original")
	}
	if d.Layout.Transitions[0].ID == "tampered" {
		t.Error("clone shares layout transitions with original")
	}
	if _, ok := d.Layout.States["sent"]; !ok {
		t.Error("clone shares layout state map with original")
	}
}

func TestMigrateLegacyIDs(t *testing.T) {
	c := validConfiguration()
	d, err := ImportDocument("orders/42", c)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	// Simulate a layout exported under the retired name-based scheme.
	d.Layout.Transitions[d.Layout.TransitionLayoutIndex("pending-0")].ID = "pending-to-sent"
	d.Layout.Transitions[d.Layout.TransitionLayoutIndex("sent-0")].ID = "sent-to-pending"

	migrated, n, err := d.MigrateLegacyIDs()
	if err != nil {
		t.Fatalf("MigrateLegacyIDs: %v", err)
	}
	if n != 2 {
		t.Errorf("migrated = %d, want 2", n)
	}
	if err := migrated.Validate(); err != nil {
		t.Errorf("migrated document invalid: %v", err)
	}
	if migrated.Layout.TransitionLayoutIndex("pending-0") < 0 {
		t.Error("pending-to-sent not rewritten to pending-0")
	}

	// The original document is untouched.
	if d.Layout.TransitionLayoutIndex("pending-to-sent") < 0 {
		t.Error("original document mutated by migration")
	}
}

func TestDocumentFileRoundTrip(t *testing.T) {
	c := validConfiguration()
	d, err := ImportDocument("orders/42", c)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	path := filepath.Join(t.TempDir(), "workflow.json")
	if err := WriteDocumentFile(d, path); err != nil {
		t.Fatalf("WriteDocumentFile: %v", err)
	}

	got, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("id = %q, want %q", got.ID, d.ID)
	}
	if got.Configuration.InitialState != "pending" {
		t.Errorf("initialState = %q, want pending", got.Configuration.InitialState)
	}
	if len(got.Layout.Transitions) != len(d.Layout.Transitions) {
		t.Errorf("layout transitions = %d, want %d", len(got.Layout.Transitions), len(d.Layout.Transitions))
	}
}

func TestUnmarshalDocumentRefusesDangling(t *testing.T) {
	data := []byte(`{
		"id": "w1",
		"entityRef": "orders/1",
		"configuration": {
			"name": "order",
			"version": "1",
			"initialState": "pending",
			"states": {
				"pending": {"name": "Pending", "transitions": [{"name": "send", "next": "missing"}]}
			}
		},
		"layout": {"states": {"pending": {"position": {"x": 0, "y": 0}}}, "transitions": []}
	}`)

	if _, err := UnmarshalDocument(data); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Fatalf("error = %v, want INVALID_CONFIGURATION", err)
	}
}
