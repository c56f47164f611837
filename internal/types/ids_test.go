// internal/types/ids_test.go
package types

import (
	"strconv"
	"testing"
)

func TestNewCycleID(t *testing.T) {
	id := NewCycleID()
	if id == "" {
		t.Error("expected non-empty CycleID")
	}
	if len(string(id)) != 36 {
		t.Errorf("expected UUID format, got %s", id)
	}
}

func TestNewEntryID_Monotonic(t *testing.T) {
	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := NewEntryID()
		n, err := strconv.ParseInt(string(id), 10, 64)
		if err != nil {
			t.Fatalf("entry ID is not numeric: %s", id)
		}
		if n <= prev {
			t.Fatalf("entry IDs not strictly increasing: %d after %d", n, prev)
		}
		prev = n
	}
}
