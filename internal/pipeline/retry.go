package pipeline

import (
	"log/slog"
	"time"
)

// RetryPolicy retries transient provider failures with exponential backoff.
// Whether a failure is transient is decided by Classify; non-retryable
// failures are returned immediately with the original error intact.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64

	// Sleep is swapped out in tests. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy matches the backoff schedule used throughout the app:
// three attempts with 2s then 4s between them.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		Multiplier:   2.0,
	}
}

// NextDelay returns the delay after the given 1-indexed attempt.
func (p *RetryPolicy) NextDelay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
	}
	return time.Duration(d)
}

// Execute runs fn until it succeeds, fails permanently, or attempts are
// exhausted. The returned error is always fn's own error, never a wrapper,
// so callers can classify it themselves.
func (p *RetryPolicy) Execute(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		cls := Classify(err)
		if !cls.Retryable || attempt == p.MaxAttempts {
			return err
		}

		delay := p.NextDelay(attempt)
		slog.Warn("retrying after transient failure",
			"op", op,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
			"kind", cls.Kind,
			"error", err)
		p.sleep(delay)
	}
	return lastErr
}

func (p *RetryPolicy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// executeFor is Execute for operations that produce a result.
func executeFor[T any](p *RetryPolicy, op string, fn func() (T, error)) (T, error) {
	var result T
	err := p.Execute(op, func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}
