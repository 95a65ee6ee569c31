package scrape

import (
	"context"
	"time"
)

// Policy is the retry schedule applied to transient fetch errors.
// Sleep is swappable so tests can drive the schedule without waiting.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first try
	MaxAttempts int
	// Base is the unit of the exponential schedule: attempts sleep
	// Base, 2*Base, 4*Base, ... between retries
	Base  time.Duration
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewPolicy(maxAttempts int, base time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Base:        base,
		Sleep:       sleepContext,
	}
}

// Backoff returns the delay to apply after the given 1-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	return p.Base << (attempt - 1)
}

// Wait blocks for the schedule's delay after the given attempt, returning
// early if the context is canceled.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	return p.Sleep(ctx, p.Backoff(attempt))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
