package pipeline

import (
	"errors"
	"testing"
	"time"
)

func testPolicy(delays *[]time.Duration) *RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(d time.Duration) { *delays = append(*delays, d) }
	return p
}

func TestExecute_TransientThenSuccess(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	calls := 0
	err := p.Execute("test", func() error {
		calls++
		if calls < 3 {
			return errors.New("server returned 503")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestExecute_PermanentFailsFast(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	original := errors.New("API key not valid")
	calls := 0
	err := p.Execute("test", func() error {
		calls++
		return original
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, original) {
		t.Errorf("err = %v, want the original error", err)
	}
	if len(delays) != 0 {
		t.Errorf("slept %v before a permanent failure", delays)
	}
}

func TestExecute_ExhaustedReturnsLastError(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	calls := 0
	err := p.Execute("test", func() error {
		calls++
		return errors.New("server returned 503")
	})
	if err == nil {
		t.Fatal("Execute succeeded after persistent failures")
	}
	if calls != p.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, p.MaxAttempts)
	}
	// No sleep after the final attempt.
	if len(delays) != p.MaxAttempts-1 {
		t.Errorf("slept %d times, want %d", len(delays), p.MaxAttempts-1)
	}
}

func TestNextDelay(t *testing.T) {
	p := DefaultRetryPolicy()
	if d := p.NextDelay(1); d != 2*time.Second {
		t.Errorf("NextDelay(1) = %v, want 2s", d)
	}
	if d := p.NextDelay(2); d != 4*time.Second {
		t.Errorf("NextDelay(2) = %v, want 4s", d)
	}
	if d := p.NextDelay(3); d != 8*time.Second {
		t.Errorf("NextDelay(3) = %v, want 8s", d)
	}
}

func TestExecuteFor_PreservesResult(t *testing.T) {
	var delays []time.Duration
	p := testPolicy(&delays)

	calls := 0
	got, err := executeFor(p, "test", func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("connection reset by peer")
		}
		return "story text", nil
	})
	if err != nil {
		t.Fatalf("executeFor: %v", err)
	}
	if got != "story text" {
		t.Errorf("result = %q", got)
	}
}
