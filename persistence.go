package settings

import "context"

// RemoteStore is the shared document store boundary: a single keyed row
// holding the configuration document and its version token. The store
// enforces no schema of its own.
type RemoteStore interface {
	// Get returns the document and token stored under key, ok=false when the
	// row does not exist yet.
	Get(ctx context.Context, key string) (Document, Version, bool, error)

	// Put upserts the document under key, stamping it with next.
	Put(ctx context.Context, key string, doc Document, next Version) error

	// FetchVersion reads only the row's current token, ok=false when the row
	// does not exist. Cheaper than Get for conflict checks.
	FetchVersion(ctx context.Context, key string) (Version, bool, error)
}

// DraftStore is the client-local durable slot holding preview-mode edits
// plus, under an independent key, the last version token confirmed against
// the remote. Failures from any method are non-fatal by contract: the Store
// logs them and degrades to "no draft available".
type DraftStore interface {
	// ReadDraft returns the last snapshot written, ok=false when absent.
	ReadDraft(ctx context.Context) (Document, bool, error)

	// WriteDraft overwrites the snapshot. No merge semantics.
	WriteDraft(ctx context.Context, doc Document) error

	// ClearDraft removes the snapshot. Idempotent.
	ClearDraft(ctx context.Context) error

	// ReadVersion returns the last confirmed token, ok=false when absent.
	ReadVersion(ctx context.Context) (Version, bool, error)

	// WriteVersion records the last confirmed token.
	WriteVersion(ctx context.Context, v Version) error
}
