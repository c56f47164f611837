// internal/state/welcome.go
package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// WelcomeStore persists the one-time welcome banner dismissal as a marker
// file.
type WelcomeStore struct {
	path string
}

// NewWelcomeStore creates a WelcomeStore with its marker at the given path.
func NewWelcomeStore(path string) *WelcomeStore {
	return &WelcomeStore{path: path}
}

// Dismissed reports whether the banner has been dismissed before.
func (s *WelcomeStore) Dismissed() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Dismiss records the dismissal. Calling it again is a no-op.
func (s *WelcomeStore) Dismiss() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte("dismissed\n"), 0o644); err != nil {
		return fmt.Errorf("write welcome marker: %w", err)
	}
	return nil
}
