package ratelimit

import (
	"testing"
	"time"
)

// manualClock lets tests advance virtual time instead of sleeping.
type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.UnixMilli(1_700_000_000_000)}
}

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(window time.Duration, max int) (*Limiter, *manualClock) {
	clock := newManualClock()
	l := New(window, max)
	l.now = clock.Now
	return l, clock
}

func TestCheckAndRecordQuota(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 8)

	for i := 0; i < 8; i++ {
		if !l.CheckAndRecord("alice") {
			t.Fatalf("request %d should be allowed", i+1)
		}
		clock.Advance(time.Second)
	}

	if l.CheckAndRecord("alice") {
		t.Fatal("9th request inside the window should be denied")
	}

	// Other senders have independent windows.
	if !l.CheckAndRecord("bob") {
		t.Fatal("different sender should be unaffected")
	}
}

func TestWindowSlides(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 8)

	for i := 0; i < 8; i++ {
		l.CheckAndRecord("alice")
	}
	if l.CheckAndRecord("alice") {
		t.Fatal("over-quota request should be denied")
	}

	// Once the window fully elapses, requests are allowed again.
	clock.Advance(time.Minute + time.Millisecond)
	if !l.CheckAndRecord("alice") {
		t.Fatal("request after window elapsed should be allowed")
	}
}

func TestDenialDoesNotExtendWindow(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 2)

	l.CheckAndRecord("alice")
	l.CheckAndRecord("alice")

	// Hammering while denied must not push the window forward.
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		if l.CheckAndRecord("alice") {
			t.Fatalf("request at +%ds should still be denied", (i+1)*10)
		}
	}

	clock.Advance(11 * time.Second) // first record is now 61s old
	if !l.CheckAndRecord("alice") {
		t.Fatal("request should be allowed once the oldest record expired")
	}
}

func TestSweepRemovesIdleSenders(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 8)

	l.CheckAndRecord("alice")
	l.CheckAndRecord("bob")
	clock.Advance(30 * time.Second)
	l.CheckAndRecord("bob")

	if got := l.TrackedSenders(); got != 2 {
		t.Fatalf("TrackedSenders = %d, want 2", got)
	}

	clock.Advance(45 * time.Second) // alice: 75s old, bob: latest 45s old
	l.Sweep()

	if got := l.TrackedSenders(); got != 1 {
		t.Fatalf("TrackedSenders after sweep = %d, want 1", got)
	}
	if !l.CheckAndRecord("alice") {
		t.Fatal("swept sender should start a fresh window")
	}
}
