// Package transform provides the graph transformations behind hierarchical
// workflow layout: cycle breaking and longest-path layer assignment.
//
// A layout run applies them in order:
//
//	g := buildGraph(configuration)
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
//
// [BreakCycles] removes back edges found by depth-first search so the
// longest-path layering terminates; workflow graphs are routinely cyclic
// (retry loops, rejection paths). [AssignLayers] then assigns each node a
// row equal to the length of the longest path from any root.
package transform
