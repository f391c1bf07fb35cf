// Package dag provides a directed graph organized into horizontal rows
// (ranks) for hierarchical workflow layouts.
//
// # Overview
//
// The auto-layout engine positions workflow states on a canvas using a
// Sugiyama-style layered drawing: states become nodes, non-loop transitions
// become edges, and each node is assigned a row equal to the length of the
// longest path from any root. This package provides the graph structure the
// layering operates on.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [Graph.AddNode] and edges with
// [Graph.AddEdge]. Nodes must have unique IDs and edges must connect
// existing nodes:
//
//	g := dag.New()
//	g.AddNode("pending")
//	g.AddNode("sent")
//	g.AddEdge("pending", "sent")
//
// Query structure with [Graph.Children], [Graph.Parents], [Graph.Sources],
// and [Graph.NodesInRow]. Row assignments are computed by the transform
// subpackage and installed with [Graph.SetRows].
//
// # Cycles
//
// Workflow graphs are frequently cyclic (retry loops, rejection paths), so
// unlike a strict DAG the structure accepts cycles on construction. Run
// [transform.BreakCycles] before layering; [Graph.Validate] reports whether
// any cycle remains.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The layout engine builds
// a fresh graph per run, so no sharing occurs in practice.
//
// [transform]: github.com/pschleger/workflow-canvas/pkg/dag/transform
package dag
