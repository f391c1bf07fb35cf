// Package pkg provides the core libraries of the flowcanvas workflow engine.
//
// # Overview
//
// flowcanvas keeps a visual finite-state workflow editor consistent: every
// edit to the functional configuration keeps the canvas layout in sync, and
// vice versa. The pkg directory is organized into these areas:
//
//  1. [workflow] - Document model (configuration, canvas layout, identities)
//  2. [engine] - Pure mutation operations over documents
//  3. [history] - Undo/redo snapshot stacks
//  4. [dag] / [layout] - Graph structure and hierarchical auto-layout
//  5. [render] - Graphviz export (DOT, SVG, PNG)
//  6. [store] / [session] - Persistence backends and editing sessions
//  7. [errors] - Coded errors shared across packages
//
// # Architecture
//
// The typical data flow through an editing session:
//
//	Imported configuration JSON
//	         ↓
//	    [workflow] package (validate, default layout)
//	         ↓
//	    [engine] package (add/update/delete states and transitions)
//	         ↓
//	    [session] package (history push + async persistence)
//	         ↓
//	    [store] backend (memory, file, MongoDB, Redis)
//
// Auto-layout runs [dag] + [layout] over the configuration and merges the
// computed positions back into the document's canvas layout. Rendering is a
// read-only path from [workflow] through [render].
//
// # Quick Start
//
// Import a configuration, lay it out, and apply an edit:
//
//	import (
//	    "github.com/pschleger/workflow-canvas/pkg/engine"
//	    "github.com/pschleger/workflow-canvas/pkg/layout"
//	    "github.com/pschleger/workflow-canvas/pkg/workflow"
//	)
//
//	// 1. Build a validated document with a default layout
//	doc, _ := workflow.ImportDocument("orders/1", cfg)
//
//	// 2. Compute a hierarchical layout and merge it in
//	res := layout.Run(doc.Configuration, layout.Options{})
//	doc = layout.Apply(doc, res, layout.Options{})
//
//	// 3. Apply an edit; the result is a new document, the input is untouched
//	doc, _, _ = engine.AddTransition(doc, "pending", workflow.TransitionDefinition{
//	    Name: "Ship", Next: "shipped",
//	})
//
// Long-lived editing flows go through [session.Session] instead, which adds
// undo/redo and background persistence on top of the same operations.
package pkg
