package middleware

import (
	"testing"
	"time"
)

func TestSlidingLimiterBurst(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	l := newSlidingLimiter(2*time.Second, 3, clock)

	for i := 0; i < 3; i++ {
		if !l.Allow(7) {
			t.Fatalf("event %d should be admitted", i+1)
		}
		now = now.Add(100 * time.Millisecond)
	}
	if l.Allow(7) {
		t.Fatal("fourth event within window should be dropped")
	}

	// A different user is not affected.
	if !l.Allow(8) {
		t.Fatal("other user should be admitted")
	}

	// Past the window the count resets.
	now = now.Add(2 * time.Second)
	if !l.Allow(7) {
		t.Fatal("first event after window should be admitted")
	}
}

func TestSlidingLimiterDroppedEventNotCounted(t *testing.T) {
	now := time.Unix(2000, 0)
	clock := func() time.Time { return now }
	l := newSlidingLimiter(2*time.Second, 1, clock)

	if !l.Allow(1) {
		t.Fatal("first event should pass")
	}
	if l.Allow(1) {
		t.Fatal("second event should be dropped")
	}
	// The rejected event must not extend the window.
	now = now.Add(2001 * time.Millisecond)
	if !l.Allow(1) {
		t.Fatal("event after window should pass")
	}
}
