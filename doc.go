// Package settings implements a platform-wide configuration store: a
// section-partitioned settings document supporting partial per-section
// writes, rule-based validation, a client-local draft/preview mode, and
// optimistic concurrency against a shared remote document store.
//
// Responsibilities:
//   - Document models the configuration as section name -> open payload,
//     with a closed set of known sections and passthrough for unknown ones.
//   - Validator implementations decide whether a section payload or a whole
//     document is acceptable; RuleValidator evaluates declarative rule sets
//     through pluggable expression engines (expr, CEL, optionally JS).
//   - Guard performs the compare-and-swap version check that arbitrates
//     concurrent writers across independent clients.
//   - Store orchestrates load/save/publish/preview, persists drafts through
//     a DraftStore, writes through a RemoteStore, and broadcasts change
//     events after every successful persisted write.
//
// Data flow:
//
//	RemoteStore -> Store.Load -> in-memory Document (+ draft overlay)
//	Store.Save / Store.SaveAll -> Validator -> Guard -> RemoteStore -> event.Emitter
//
// Persistence contracts stay behind RemoteStore/DraftStore implementations
// supplied by consumers; see pkg/remote and pkg/draft for the bundled ones.
package settings
