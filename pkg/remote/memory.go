package remote

import (
	"context"
	"sync"

	settings "github.com/goliatone/go-settings"
)

// MemoryStore is a minimal in-memory RemoteStore intended for tests and
// examples. Sharing one MemoryStore between several settings.Store
// instances simulates independent clients racing on the same remote row.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	doc     settings.Document
	version settings.Version
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}}
}

// Get implements settings.RemoteStore.
func (s *MemoryStore) Get(_ context.Context, key string) (settings.Document, settings.Version, bool, error) {
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, settings.Version{}, false, nil
	}
	return record.doc.Clone(), record.version, true, nil
}

// Put implements settings.RemoteStore with upsert semantics.
func (s *MemoryStore) Put(_ context.Context, key string, doc settings.Document, next settings.Version) error {
	s.mu.Lock()
	s.records[key] = memoryRecord{doc: doc.Clone(), version: next}
	s.mu.Unlock()
	return nil
}

// FetchVersion implements settings.RemoteStore.
func (s *MemoryStore) FetchVersion(_ context.Context, key string) (settings.Version, bool, error) {
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return settings.Version{}, false, nil
	}
	return record.version, true, nil
}
