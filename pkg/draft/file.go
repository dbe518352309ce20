package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	settings "github.com/goliatone/go-settings"
)

// FileStore persists the slot as a single JSON file with two independent
// top-level keys: "document" (the draft snapshot) and "version" (the last
// confirmed token). Clearing the draft leaves the version untouched and
// vice versa.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path. The parent directory is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ReadDraft implements settings.DraftStore.
func (s *FileStore) ReadDraft(_ context.Context) (settings.Document, bool, error) {
	data, err := s.readSlot()
	if err != nil {
		return nil, false, err
	}
	result := gjson.GetBytes(data, "document")
	if !result.Exists() {
		return nil, false, nil
	}
	var doc settings.Document
	if err := json.Unmarshal([]byte(result.Raw), &doc); err != nil {
		return nil, false, fmt.Errorf("draft: decode document: %w", err)
	}
	return doc, true, nil
}

// WriteDraft implements settings.DraftStore with overwrite semantics.
func (s *FileStore) WriteDraft(_ context.Context, doc settings.Document) error {
	data, err := s.readSlot()
	if err != nil {
		data = []byte("{}")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("draft: encode document: %w", err)
	}
	updated, err := sjson.SetRawBytes(data, "document", raw)
	if err != nil {
		return fmt.Errorf("draft: set document: %w", err)
	}
	return s.writeSlot(updated)
}

// ClearDraft implements settings.DraftStore. Idempotent.
func (s *FileStore) ClearDraft(_ context.Context) error {
	data, err := s.readSlot()
	if err != nil {
		return nil
	}
	if !gjson.GetBytes(data, "document").Exists() {
		return nil
	}
	updated, err := sjson.DeleteBytes(data, "document")
	if err != nil {
		return fmt.Errorf("draft: clear document: %w", err)
	}
	return s.writeSlot(updated)
}

// ReadVersion implements settings.DraftStore.
func (s *FileStore) ReadVersion(_ context.Context) (settings.Version, bool, error) {
	data, err := s.readSlot()
	if err != nil {
		return settings.Version{}, false, err
	}
	result := gjson.GetBytes(data, "version")
	if !result.Exists() || result.String() == "" {
		return settings.Version{}, false, nil
	}
	return settings.ParseVersion(result.String()), true, nil
}

// WriteVersion implements settings.DraftStore.
func (s *FileStore) WriteVersion(_ context.Context, v settings.Version) error {
	data, err := s.readSlot()
	if err != nil {
		data = []byte("{}")
	}
	updated, err := sjson.SetBytes(data, "version", v.String())
	if err != nil {
		return fmt.Errorf("draft: set version: %w", err)
	}
	return s.writeSlot(updated)
}

func (s *FileStore) readSlot() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft: read slot: %w", err)
	}
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("draft: slot file corrupt")
	}
	return data, nil
}

// writeSlot writes via a temp file + rename so a crash mid-write cannot
// corrupt the slot.
func (s *FileStore) writeSlot(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("draft: create slot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("draft: write slot: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("draft: write slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("draft: write slot: %w", err)
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("draft: write slot: %w", err)
	}
	return nil
}
