package transform

import (
	"testing"

	"github.com/pschleger/workflow-canvas/pkg/dag"
)

func build(t *testing.T, nodes []string, edges [][2]string) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, id := range nodes {
		if err := g.AddNode(id); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e[0], e[1], err)
		}
	}
	return g
}

func rowOf(t *testing.T, g *dag.Graph, id string) int {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n.Row
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name        string
		nodes       []string
		edges       [][2]string
		wantRemoved int
	}{
		{
			name:  "Acyclic",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:        "RetryLoop",
			nodes:       []string{"pending", "sent"},
			edges:       [][2]string{{"pending", "sent"}, {"sent", "pending"}},
			wantRemoved: 1,
		},
		{
			name:        "RootlessCycle",
			nodes:       []string{"a", "b", "c"},
			edges:       [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
			wantRemoved: 1,
		},
		{
			name:  "TwoCycles",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{
				{"a", "b"}, {"b", "a"},
				{"c", "d"}, {"d", "c"},
			},
			wantRemoved: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)

			removed := BreakCycles(g)

			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("graph still cyclic after BreakCycles: %v", err)
			}
		})
	}
}

func TestBreakCyclesPrefersRootReachableEdges(t *testing.T) {
	// a -> b -> c -> b: the back edge c->b must go, not the tree edge b->c.
	g := build(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}})

	BreakCycles(g)

	if got := g.Children("b"); len(got) != 1 || got[0] != "c" {
		t.Errorf("Children(b) = %v, want [c]", got)
	}
	if got := g.Children("c"); len(got) != 0 {
		t.Errorf("Children(c) = %v, want empty", got)
	}
}

func TestAssignLayers(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []string
		edges    [][2]string
		wantRows map[string]int
	}{
		{
			name:     "Chain",
			nodes:    []string{"a", "b", "c"},
			edges:    [][2]string{{"a", "b"}, {"b", "c"}},
			wantRows: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "LongestPathWins",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{
				{"a", "b"}, {"b", "d"},
				{"a", "d"}, // short path must not pull d up
				{"a", "c"},
			},
			wantRows: map[string]int{"a": 0, "b": 1, "c": 1, "d": 2},
		},
		{
			name:     "TwoRoots",
			nodes:    []string{"a", "b", "c"},
			edges:    [][2]string{{"a", "c"}, {"b", "c"}},
			wantRows: map[string]int{"a": 0, "b": 0, "c": 1},
		},
		{
			name:     "Disconnected",
			nodes:    []string{"a", "b"},
			edges:    nil,
			wantRows: map[string]int{"a": 0, "b": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)

			AssignLayers(g)

			for id, want := range tt.wantRows {
				if got := rowOf(t, g, id); got != want {
					t.Errorf("row(%s) = %d, want %d", id, got, want)
				}
			}
		})
	}
}

func TestAssignLayersAfterBreakCycles(t *testing.T) {
	g := build(t, []string{"pending", "sent", "done"},
		[][2]string{{"pending", "sent"}, {"sent", "pending"}, {"sent", "done"}})

	BreakCycles(g)
	AssignLayers(g)

	if got := rowOf(t, g, "pending"); got != 0 {
		t.Errorf("row(pending) = %d, want 0", got)
	}
	if got := rowOf(t, g, "sent"); got != 1 {
		t.Errorf("row(sent) = %d, want 1", got)
	}
	if got := rowOf(t, g, "done"); got != 2 {
		t.Errorf("row(done) = %d, want 2", got)
	}
}
