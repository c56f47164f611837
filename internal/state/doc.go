// Package state provides filesystem-backed storage implementations.
package state

import "github.com/user/storyweaver/internal/types"

// Compile-time interface compliance checks.
var _ types.HistoryStore = (*HistoryStore)(nil)
var _ types.WelcomeStore = (*WelcomeStore)(nil)
