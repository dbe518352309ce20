// Package remote bundles RemoteStore implementations: an in-memory store
// for tests and examples, and a Postgres-backed store where the document
// lives in a single JSONB row keyed by logical name.
package remote
