package state

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/storyweaver/internal/types"
	"github.com/user/storyweaver/pkg/provider"
)

func testEntry(n int) *types.HistoryEntry {
	return &types.HistoryEntry{
		ID:        types.EntryID(fmt.Sprintf("entry-%d", n)),
		Story:     fmt.Sprintf("story %d", n),
		ImageRef:  fmt.Sprintf("img-%d.jpg", n),
		Prompt:    "prompt",
		Timestamp: time.Now(),
		Sources:   []provider.Source{{URI: "https://example.com", Title: "Example"}},
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))

	for i := 1; i <= MaxEntries+1; i++ {
		if err := store.Append(testEntry(i)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != MaxEntries {
		t.Fatalf("len = %d, want %d", len(entries), MaxEntries)
	}
	// Newest first; the very first entry has been evicted.
	if entries[0].ID != "entry-6" {
		t.Errorf("entries[0].ID = %s, want entry-6", entries[0].ID)
	}
	if entries[MaxEntries-1].ID != "entry-2" {
		t.Errorf("oldest kept = %s, want entry-2", entries[MaxEntries-1].ID)
	}
	for _, e := range entries {
		if e.ID == "entry-1" {
			t.Error("entry-1 should have been evicted")
		}
	}
}

func TestRemove(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	for i := 1; i <= 3; i++ {
		store.Append(testEntry(i))
	}

	if err := store.Remove("entry-2"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	entries, _ := store.List()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != "entry-3" || entries[1].ID != "entry-1" {
		t.Errorf("order after remove = %s, %s", entries[0].ID, entries[1].ID)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	store.Append(testEntry(1))

	if err := store.Remove("nope"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	entries, _ := store.List()
	if len(entries) != 1 {
		t.Errorf("len = %d, want 1", len(entries))
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewHistoryStore(path)
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}

	// The store keeps working after the reset.
	if err := store.Append(testEntry(1)); err != nil {
		t.Fatalf("Append after corruption: %v", err)
	}
	entries, _ = store.List()
	if len(entries) != 1 {
		t.Errorf("len = %d, want 1", len(entries))
	}
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	NewHistoryStore(path).Append(testEntry(1))

	entries, err := NewHistoryStore(path).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Story != "story 1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestListReturnsCopies(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	store.Append(testEntry(1))

	entries, _ := store.List()
	entries[0].Story = "tampered"
	entries[0].Sources[0].URI = "https://tampered.example"

	fresh, _ := store.List()
	if fresh[0].Story != "story 1" {
		t.Error("stored story mutated through a returned snapshot")
	}
	if fresh[0].Sources[0].URI != "https://example.com" {
		t.Error("stored sources mutated through a returned snapshot")
	}
}

func TestAppendCopiesInput(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	entry := testEntry(1)
	store.Append(entry)

	entry.Story = "tampered"
	entries, _ := store.List()
	if entries[0].Story != "story 1" {
		t.Error("appended entry shares memory with caller")
	}
}
