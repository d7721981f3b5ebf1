package cache

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestGetSetAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := NewWithClock(time.Hour, clock)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("unexpected hit for missing key")
	}

	c.Set("k", "v")
	v, ok := c.Get("k")
	if !ok || v.(string) != "v" {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}

	clock.now = clock.now.Add(time.Hour + time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expiry after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not purged, len = %d", c.Len())
	}
}

func TestSetRefreshesTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := NewWithClock(time.Hour, clock)

	c.Set("k", 1)
	clock.now = clock.now.Add(45 * time.Minute)
	c.Set("k", 2)
	clock.now = clock.now.Add(45 * time.Minute)

	v, ok := c.Get("k")
	if !ok || v.(int) != 2 {
		t.Fatalf("expected refreshed entry, got %v %v", v, ok)
	}
}

func TestKeyNormalization(t *testing.T) {
	a := Key("Acme  Widgets", "what is   ACME?")
	b := Key("acme widgets", "What is acme?")
	if a != b {
		t.Errorf("equivalent queries produced different keys: %q vs %q", a, b)
	}
	if a == Key("acme widgets", "other query") {
		t.Error("distinct queries collided")
	}
}
