// internal/types/interfaces.go
package types

// HistoryStore is the bounded, newest-first persisted cache of past
// generation results.
type HistoryStore interface {
	Append(entry *HistoryEntry) error
	Remove(id EntryID) error
	List() ([]*HistoryEntry, error)
}

// WelcomeStore tracks the one-time welcome banner dismissal marker.
type WelcomeStore interface {
	Dismissed() bool
	Dismiss() error
}
