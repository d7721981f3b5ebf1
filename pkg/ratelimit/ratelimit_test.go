package ratelimit

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestLimiterRespectsCapacity(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewWithClock(2, 1, clock)

	if !l.Allow() || !l.Allow() {
		t.Fatal("expected two tokens from a fresh bucket of capacity 2")
	}
	if l.Allow() {
		t.Fatal("expected an empty bucket after draining capacity")
	}
}

func TestLimiterRefills(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewWithClock(1, 1, clock)

	if !l.Allow() {
		t.Fatal("expected first token")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}
	clock.Advance(time.Second)
	if !l.Allow() {
		t.Fatal("expected a refilled token after one second")
	}
}

func TestWaitHonorsContextTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewWithClock(1, 0.001, clock)
	l.pollInterval = time.Millisecond

	if !l.Allow() {
		t.Fatal("expected first token")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
