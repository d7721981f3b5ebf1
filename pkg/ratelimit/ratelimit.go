package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPollInterval is the sleep between token checks while waiting.
// Busy-poll-with-sleep keeps the caller's context timeout in charge instead
// of blocking inside the limiter.
const DefaultPollInterval = 50 * time.Millisecond

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Limiter is a token bucket bounding outbound provider calls.
type Limiter struct {
	rl           *rate.Limiter
	clock        Clock
	pollInterval time.Duration
}

// New creates a limiter with the given bucket capacity and refill rate
// (tokens per second).
func New(capacity int, refillPerSecond float64) *Limiter {
	return NewWithClock(capacity, refillPerSecond, realClock{})
}

// NewWithClock creates a limiter with an injectable clock.
func NewWithClock(capacity int, refillPerSecond float64, clock Clock) *Limiter {
	return &Limiter{
		rl:           rate.NewLimiter(rate.Limit(refillPerSecond), capacity),
		clock:        clock,
		pollInterval: DefaultPollInterval,
	}
}

// Allow consumes a token if one is available.
func (l *Limiter) Allow() bool {
	return l.rl.AllowN(l.clock.Now(), 1)
}

// Wait polls for a token, sleeping pollInterval between checks, until the
// context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if l.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollInterval):
		}
	}
}
