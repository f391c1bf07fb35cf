// Package workflow defines the document model for the workflow consistency
// engine: the functional Configuration (states, transitions, guards), the
// visual CanvasLayout (positions, handles, label offsets), and the combined
// Document the engine manipulates.
//
// # Two Linked Halves
//
// Configuration and CanvasLayout are separate but referentially linked
// documents. The layout is keyed to the configuration by state id and by
// canonical transition identity; four structural invariants (see validate.go)
// keep the pair mutually valid. All mutation goes through pkg/engine, which
// restores the invariants before returning.
//
// # Transition Identity
//
// A transition has no stored id. Its canonical identity is derived from its
// position: "<sourceStateID>-<index>". identity.go implements generation,
// parsing, validation, resolution, and one-way migration of the retired
// "<source>-to-<target>" scheme.
//
// # Serialization
//
// Documents serialize losslessly to JSON (io.go); the field names are the
// exported file format and must not change. The same types carry bson tags
// for the Mongo-backed store.
package workflow
