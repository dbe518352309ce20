// Package draft bundles DraftStore implementations for the client-local
// durable slot holding preview-mode edits and the last confirmed version
// token. The slot is exclusively owned by one client and never subject to
// conflict detection.
package draft
