// internal/types/models.go
package types

import (
	"time"

	"github.com/user/storyweaver/pkg/provider"
)

// HistoryEntry is a denormalized snapshot of one completed generation
// cycle, persisted newest-first with a fixed capacity.
type HistoryEntry struct {
	ID        EntryID           `json:"id"`
	Story     string            `json:"story"`
	ImageRef  string            `json:"image_ref"`
	Prompt    string            `json:"prompt"`
	Timestamp time.Time         `json:"timestamp"`
	Sources   []provider.Source `json:"sources"`
}

// Clone returns an independent deep copy, so later cycles can never
// retroactively mutate a stored snapshot.
func (e *HistoryEntry) Clone() *HistoryEntry {
	out := *e
	if e.Sources != nil {
		out.Sources = make([]provider.Source, len(e.Sources))
		copy(out.Sources, e.Sources)
	}
	return &out
}
