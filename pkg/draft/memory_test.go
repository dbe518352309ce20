package draft_test

import (
	"context"
	"testing"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/draft"
)

func TestMemoryStoreDraftLifecycle(t *testing.T) {
	store := draft.NewMemoryStore()
	ctx := context.Background()

	if _, found, err := store.ReadDraft(ctx); err != nil || found {
		t.Fatalf("fresh store: found=%v err=%v", found, err)
	}

	doc := settings.Document{"design": {"theme": "dark"}}
	if err := store.WriteDraft(ctx, doc); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, found, err := store.ReadDraft(ctx)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	if !got.Equal(doc) {
		t.Fatalf("document = %v", got)
	}

	// returned copy is detached
	got["design"]["theme"] = "mutated"
	again, _, _ := store.ReadDraft(ctx)
	if again["design"]["theme"] != "dark" {
		t.Fatal("store shares memory with readers")
	}

	if err := store.ClearDraft(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found, _ := store.ReadDraft(ctx); found {
		t.Fatal("draft survived clear")
	}
}

func TestMemoryStoreVersionIndependentOfDraft(t *testing.T) {
	store := draft.NewMemoryStore()
	ctx := context.Background()
	confirmed := settings.NewVersion()

	if err := store.WriteVersion(ctx, confirmed); err != nil {
		t.Fatalf("write version: %v", err)
	}
	if err := store.WriteDraft(ctx, settings.Document{"design": {}}); err != nil {
		t.Fatalf("write draft: %v", err)
	}
	if err := store.ClearDraft(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, has, err := store.ReadVersion(ctx)
	if err != nil || !has || !got.Equal(confirmed) {
		t.Fatalf("version after clear: has=%v err=%v got=%q", has, err, got.String())
	}
}
