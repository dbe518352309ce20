package draft

import (
	"context"
	"sync"

	settings "github.com/goliatone/go-settings"
)

// MemoryStore is an in-memory DraftStore for tests and examples.
type MemoryStore struct {
	mu      sync.RWMutex
	doc     settings.Document
	hasDoc  bool
	version settings.Version
	hasVer  bool
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReadDraft implements settings.DraftStore.
func (s *MemoryStore) ReadDraft(_ context.Context) (settings.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasDoc {
		return nil, false, nil
	}
	return s.doc.Clone(), true, nil
}

// WriteDraft implements settings.DraftStore.
func (s *MemoryStore) WriteDraft(_ context.Context, doc settings.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.hasDoc = true
	return nil
}

// ClearDraft implements settings.DraftStore.
func (s *MemoryStore) ClearDraft(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	s.hasDoc = false
	return nil
}

// ReadVersion implements settings.DraftStore.
func (s *MemoryStore) ReadVersion(_ context.Context) (settings.Version, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, s.hasVer, nil
}

// WriteVersion implements settings.DraftStore.
func (s *MemoryStore) WriteVersion(_ context.Context, v settings.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
	s.hasVer = true
	return nil
}
