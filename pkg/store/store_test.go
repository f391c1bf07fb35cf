package store

import (
	"context"
	"testing"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

func testRecord() ConfigurationRecord {
	return ConfigurationRecord{
		EntityRef: "orders/order",
		Configuration: workflow.Configuration{
			Name:         "order",
			Version:      "1.0",
			InitialState: "pending",
			States: map[string]workflow.StateDefinition{
				"pending": {
					Name: "Pending",
					Transitions: []workflow.TransitionDefinition{
						{Name: "Ship", Next: "shipped"},
					},
				},
				"shipped": {Name: "Shipped"},
			},
		},
	}
}

func testLayout() workflow.CanvasLayout {
	return workflow.CanvasLayout{
		States: map[string]workflow.StateLayout{
			"pending": {Position: workflow.Point{X: 40, Y: 40}},
			"shipped": {Position: workflow.Point{X: 260, Y: 40}},
		},
		Transitions: []workflow.TransitionLayout{
			{ID: "pending-0"},
		},
	}
}

// backends under test. Mongo and Redis need running servers and are covered
// by integration environments, not here.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer s.Close()

			if err := s.SaveConfiguration(ctx, "wf-1", testRecord()); err != nil {
				t.Fatalf("SaveConfiguration: %v", err)
			}
			if err := s.SaveLayout(ctx, "wf-1", testLayout()); err != nil {
				t.Fatalf("SaveLayout: %v", err)
			}

			rec, err := s.LoadConfiguration(ctx, "wf-1")
			if err != nil {
				t.Fatalf("LoadConfiguration: %v", err)
			}
			if rec.EntityRef != "orders/order" {
				t.Errorf("entityRef = %q, want orders/order", rec.EntityRef)
			}
			if rec.Configuration.InitialState != "pending" || len(rec.Configuration.States) != 2 {
				t.Errorf("configuration = %+v, want the saved one", rec.Configuration)
			}

			l, err := s.LoadLayout(ctx, "wf-1")
			if err != nil {
				t.Fatalf("LoadLayout: %v", err)
			}
			if got := l.States["shipped"].Position; got != (workflow.Point{X: 260, Y: 40}) {
				t.Errorf("shipped position = %v, want {260 40}", got)
			}
			if len(l.Transitions) != 1 || l.Transitions[0].ID != "pending-0" {
				t.Errorf("transitions = %+v, want one record pending-0", l.Transitions)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer s.Close()

			_, err := s.LoadConfiguration(ctx, "nope")
			if !IsNotFound(err) {
				t.Errorf("LoadConfiguration(missing) = %v, want NOT_FOUND", err)
			}
			_, err = s.LoadLayout(ctx, "nope")
			if !IsNotFound(err) {
				t.Errorf("LoadLayout(missing) = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestHalvesAreIndependent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer s.Close()

			if err := s.SaveConfiguration(ctx, "wf-1", testRecord()); err != nil {
				t.Fatalf("SaveConfiguration: %v", err)
			}

			if _, err := s.LoadConfiguration(ctx, "wf-1"); err != nil {
				t.Errorf("LoadConfiguration: %v", err)
			}
			if _, err := s.LoadLayout(ctx, "wf-1"); !IsNotFound(err) {
				t.Errorf("LoadLayout without a saved layout = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.SaveConfiguration(ctx, "wf-1", testRecord()); err != nil {
		t.Fatalf("SaveConfiguration: %v", err)
	}

	rec, err := s.LoadConfiguration(ctx, "wf-1")
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	delete(rec.Configuration.States, "pending")

	again, err := s.LoadConfiguration(ctx, "wf-1")
	if err != nil {
		t.Fatalf("LoadConfiguration: %v", err)
	}
	if !again.Configuration.HasState("pending") {
		t.Error("mutating a loaded configuration changed the stored one")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := first.SaveConfiguration(ctx, "wf-1", testRecord()); err != nil {
		t.Fatalf("SaveConfiguration: %v", err)
	}
	first.Close()

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rec, err := second.LoadConfiguration(ctx, "wf-1")
	if err != nil {
		t.Fatalf("LoadConfiguration after reopen: %v", err)
	}
	if rec.Configuration.Name != "order" {
		t.Errorf("configuration name = %q, want order", rec.Configuration.Name)
	}
	if rec.EntityRef != "orders/order" {
		t.Errorf("entityRef = %q, want orders/order", rec.EntityRef)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, id := range []string{"../escape", "a/b", "a\\b", ""} {
		if err := s.SaveConfiguration(ctx, id, testRecord()); errors.GetCode(err) != errors.ErrCodeInvalidInput {
			t.Errorf("SaveConfiguration(%q) = %v, want INVALID_INPUT", id, err)
		}
	}
}
