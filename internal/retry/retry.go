// Package retry provides a small bounded retry policy.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the number of attempts made by Default().
	DefaultMaxAttempts = 2
	// DefaultDelay is the fixed delay between attempts made by Default().
	DefaultDelay = 500 * time.Millisecond
)

// Policy runs an operation up to MaxAttempts times with a fixed Delay between attempts.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Sleep waits between attempts. If nil, a context-aware timer is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Default returns the policy used for push-triggered refetches: 2 attempts, 500ms apart.
func Default() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The error of the last attempt is returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if sleepErr := p.sleep(ctx); sleepErr != nil {
			return err
		}
	}
	return err
}

func (p Policy) sleep(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
