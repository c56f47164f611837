// internal/types/ids.go
package types

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type CycleID string
type EntryID string

func NewCycleID() CycleID {
	return CycleID(uuid.New().String())
}

var (
	entryMu   sync.Mutex
	lastEntry int64
)

// NewEntryID returns a time-derived identifier that stays strictly
// monotonic even when two entries land in the same millisecond.
func NewEntryID() EntryID {
	entryMu.Lock()
	defer entryMu.Unlock()
	now := time.Now().UnixMilli()
	if now <= lastEntry {
		now = lastEntry + 1
	}
	lastEntry = now
	return EntryID(strconv.FormatInt(now, 10))
}
