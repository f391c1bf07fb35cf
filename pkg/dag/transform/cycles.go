package transform

import "github.com/pschleger/workflow-canvas/pkg/dag"

// BreakCycles removes back edges from the graph until it is acyclic,
// returning the number of edges removed.
//
// Back edges are found by depth-first search with white/gray/black coloring:
// an edge into a gray (in-progress) node closes a cycle. The search starts
// from the graph's sources so that edges reachable from a root are preferred
// as tree edges; components with no source (pure cycles) are entered from an
// arbitrary member, which makes that member the effective root of its cycle.
//
// Removal is destructive. The layout engine builds a throwaway graph per
// run, so the configuration itself is never modified.
func BreakCycles(g *dag.Graph) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
	}
	return len(backEdges)
}
