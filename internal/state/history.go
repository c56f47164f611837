// internal/state/history.go
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/storyweaver/internal/types"
)

// MaxEntries bounds the history cache: inserting beyond it evicts the
// oldest entry.
const MaxEntries = 5

// HistoryStore is a JSON-file-backed, newest-first bounded cache of past
// generation results. All writes are read-modify-write with an atomic
// rename; last writer wins, which is fine because writes originate from a
// single pipeline.
type HistoryStore struct {
	path string
	mu   sync.RWMutex
}

// NewHistoryStore creates a file-backed HistoryStore at the given path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Append prepends a deep copy of the entry, truncates to the most recent
// MaxEntries, and persists the result.
func (s *HistoryStore) Append(entry *types.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries = append([]*types.HistoryEntry{entry.Clone()}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return s.save(entries)
}

// Remove deletes the entry with the given id. A missing id is not an error:
// the list is simply persisted unchanged.
func (s *HistoryStore) Remove(id types.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return s.save(kept)
}

// List returns all entries, newest first.
func (s *HistoryStore) List() ([]*types.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.load()
	out := make([]*types.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out, nil
}

// load reads the JSON file. A missing or unparseable file yields an empty
// history rather than failing startup.
func (s *HistoryStore) load() []*types.HistoryEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read history file", "path", s.path, "error", err)
		}
		return nil
	}

	var entries []*types.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("history file is corrupt, starting empty", "path", s.path, "error", err)
		return nil
	}
	return entries
}

// save writes the entry list to disk using atomic write (temp file + rename).
func (s *HistoryStore) save(entries []*types.HistoryEntry) error {
	if entries == nil {
		entries = []*types.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp history file: %w", err)
	}
	return nil
}
