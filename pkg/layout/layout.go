// Package layout implements hierarchical auto-layout for workflow states.
//
// The engine builds a directed graph from a configuration (one node per
// state, one edge per non-loop transition), breaks cycles, assigns ranks by
// longest path, and spaces nodes on a grid: sibling nodes a rank apart by
// node separation, ranks apart by rank separation. The output is one
// position per state in canvas coordinates, anchored at the node's top-left
// corner.
//
// Self-loop transitions are not layout edges; their visual records survive
// untouched except for the label, which [Apply] pins just above the source
// node.
package layout

import (
	"slices"
	"time"

	"github.com/pschleger/workflow-canvas/pkg/dag"
	"github.com/pschleger/workflow-canvas/pkg/dag/transform"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// Direction selects which canvas axis ranks grow along.
type Direction string

const (
	// DirectionTopDown stacks ranks vertically, the default.
	DirectionTopDown Direction = "TB"
	// DirectionLeftRight stacks ranks horizontally.
	DirectionLeftRight Direction = "LR"
)

// Default geometry, matching the canvas's standard state node size.
const (
	DefaultNodeWidth      = 180.0
	DefaultNodeHeight     = 72.0
	DefaultNodeSeparation = 60.0
	DefaultRankSeparation = 90.0
)

// selfLoopLabelLift is how far above the source node a self-loop transition
// label is pinned.
const selfLoopLabelLift = 28.0

// Options configures a layout run. Zero values select the defaults.
type Options struct {
	NodeWidth      float64
	NodeHeight     float64
	NodeSeparation float64
	RankSeparation float64
	Direction      Direction
}

func (o Options) withDefaults() Options {
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.NodeSeparation <= 0 {
		o.NodeSeparation = DefaultNodeSeparation
	}
	if o.RankSeparation <= 0 {
		o.RankSeparation = DefaultRankSeparation
	}
	if o.Direction == "" {
		o.Direction = DirectionTopDown
	}
	return o
}

// NodePosition is a computed top-left corner for one state.
type NodePosition struct {
	ID       string
	Position workflow.Point
}

// Result holds the outcome of a layout run.
type Result struct {
	Positions    []NodePosition
	CyclesBroken int
}

// Run computes positions for every state in the configuration. An empty
// configuration yields an empty result; callers treat that as a no-op, not
// an error.
func Run(c workflow.Configuration, opts Options) Result {
	if len(c.States) == 0 {
		return Result{}
	}
	opts = opts.withDefaults()

	g := buildGraph(c)
	broken := transform.BreakCycles(g)
	transform.AssignLayers(g)

	// Row extents first: each row is centered against the widest one.
	rowIDs := g.RowIDs()
	maxWidth := 0.0
	pitch := opts.NodeWidth + opts.NodeSeparation
	if opts.Direction == DirectionLeftRight {
		pitch = opts.NodeHeight + opts.NodeSeparation
	}
	for _, row := range rowIDs {
		if w := float64(len(g.NodesInRow(row)))*pitch - opts.NodeSeparation; w > maxWidth {
			maxWidth = w
		}
	}

	result := Result{CyclesBroken: broken}
	for _, row := range rowIDs {
		ids := dagNodeIDs(g.NodesInRow(row))
		slices.Sort(ids) // deterministic sibling order

		rowWidth := float64(len(ids))*pitch - opts.NodeSeparation
		offset := (maxWidth - rowWidth) / 2

		for i, id := range ids {
			var cx, cy float64
			if opts.Direction == DirectionLeftRight {
				cx = float64(row)*(opts.NodeWidth+opts.RankSeparation) + opts.NodeWidth/2
				cy = offset + float64(i)*pitch + opts.NodeHeight/2
			} else {
				cx = offset + float64(i)*pitch + opts.NodeWidth/2
				cy = float64(row)*(opts.NodeHeight+opts.RankSeparation) + opts.NodeHeight/2
			}
			// Canvas anchors are top-left corners, not centers.
			result.Positions = append(result.Positions, NodePosition{
				ID: id,
				Position: workflow.Point{
					X: cx - opts.NodeWidth/2,
					Y: cy - opts.NodeHeight/2,
				},
			})
		}
	}
	return result
}

// Apply merges computed positions into the document's layout, pins
// self-loop transition labels above their source node, and bumps UpdatedAt.
// Positions for ids the document does not know are left unchanged.
func Apply(doc *workflow.Document, res Result, opts Options) *workflow.Document {
	if len(res.Positions) == 0 {
		return doc
	}
	opts = opts.withDefaults()

	out := doc.Clone()
	for _, p := range res.Positions {
		entry, ok := out.Layout.States[p.ID]
		if !ok {
			continue
		}
		entry.Position = p.Position
		out.Layout.States[p.ID] = entry
	}

	for i, rec := range out.Layout.Transitions {
		source, _, ok := workflow.ParseTransitionID(rec.ID)
		if !ok {
			continue
		}
		t, err := out.ResolveTransition(rec.ID)
		if err != nil || t.Next != source {
			continue
		}
		anchor := out.Layout.States[source].Position
		out.Layout.Transitions[i].LabelPosition = workflow.Point{
			X: anchor.X + opts.NodeWidth/2,
			Y: anchor.Y - selfLoopLabelLift,
		}
	}

	out.UpdatedAt = time.Now().UTC()
	return out
}

// buildGraph creates the layout graph: one node per state, one edge per
// transition whose target differs from its source. Disabled transitions
// still shape the layout; hiding them is a rendering concern.
//
// The configuration is validated before layout runs, so the graph error
// paths (duplicate or unknown node ids) are unreachable here.
func buildGraph(c workflow.Configuration) *dag.Graph {
	g := dag.New()
	for _, id := range c.StateIDs() {
		_ = g.AddNode(id)
	}
	for _, id := range c.StateIDs() {
		for _, t := range c.States[id].Transitions {
			if t.Next == id {
				continue // self-loops are not layout edges
			}
			_ = g.AddEdge(id, t.Next)
		}
	}
	return g
}

func dagNodeIDs(nodes []*dag.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
