// Package ratelimit implements a per-sender sliding-window request throttle.
// At most maxRequests sends are allowed in any trailing window per sender;
// a denial does not reset or extend the window.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 8
	DefaultSweepEvery  = 5 * time.Minute
)

// Limiter tracks request timestamps per sender in memory. Windows are
// pruned lazily on access and periodically by Sweep, which also drops
// senders whose window emptied so one-off senders do not accumulate.
type Limiter struct {
	window time.Duration
	max    int

	mu      sync.Mutex
	senders map[string][]int64 // unix ms, ascending
	now     func() time.Time
}

// New creates a Limiter. Non-positive arguments fall back to the defaults.
func New(window time.Duration, maxRequests int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	return &Limiter{
		window:  window,
		max:     maxRequests,
		senders: make(map[string][]int64),
		now:     time.Now,
	}
}

// CheckAndRecord reports whether the sender is under quota and, if so,
// records the request. When the sender is over quota the pruned window is
// kept as-is: the denied request itself never counts against the window.
func (l *Limiter) CheckAndRecord(sender string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	nowMs := l.now().UnixMilli()
	recent := pruneBefore(l.senders[sender], nowMs-l.window.Milliseconds())

	if len(recent) >= l.max {
		l.senders[sender] = recent
		return false
	}

	l.senders[sender] = append(recent, nowMs)
	return true
}

// Sweep prunes expired timestamps for every tracked sender and removes
// senders with empty windows. Intended to run on a fixed schedule.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().UnixMilli() - l.window.Milliseconds()
	for sender, ts := range l.senders {
		recent := pruneBefore(ts, cutoff)
		if len(recent) == 0 {
			delete(l.senders, sender)
		} else {
			l.senders[sender] = recent
		}
	}
}

// TrackedSenders returns how many senders currently have a window.
func (l *Limiter) TrackedSenders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.senders)
}

// pruneBefore drops timestamps at or before the cutoff. Timestamps are
// appended in order, so the first surviving index bounds the rest.
func pruneBefore(ts []int64, cutoff int64) []int64 {
	i := 0
	for i < len(ts) && ts[i] <= cutoff {
		i++
	}
	if i == 0 {
		return ts
	}
	return append([]int64(nil), ts[i:]...)
}
