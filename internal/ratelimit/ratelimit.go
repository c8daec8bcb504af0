// Package ratelimit implements per-client admission control using a fixed
// window counter.
//
// The window is fixed, not sliding: a client that spends its whole quota just
// before a window edge can spend a fresh quota right after it, so up to twice
// the configured points may land within a few seconds around the boundary.
// This matches the admission semantics the API has always had.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultPoints is the number of requests admitted per key per window.
	DefaultPoints = 100
	// DefaultWindow is the admission window length (15 minutes).
	DefaultWindow = 900 * time.Second
)

// window tracks one client's usage inside its current fixed window.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter admits up to points requests per client key per window. Windows are
// created on first use and recreated on rollover; expired entries are removed
// by EvictExpired so memory stays bounded by the set of recently seen clients.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	points  int
	window  time.Duration
	now     func() time.Time
}

// New creates a Limiter admitting points requests per key per window.
// Non-positive arguments select the defaults.
func New(points int, windowDur time.Duration) *Limiter {
	if points <= 0 {
		points = DefaultPoints
	}
	if windowDur <= 0 {
		windowDur = DefaultWindow
	}
	return &Limiter{
		windows: make(map[string]*window),
		points:  points,
		window:  windowDur,
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed. It never
// fails: a false return is a final admission decision for the current window,
// and the caller translates it into a rejection response.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if w.count >= l.points {
		return false
	}
	w.count++
	return true
}

// EvictExpired removes windows whose reset time has passed and returns the
// number of entries dropped. A client evicted here is indistinguishable from
// one never seen: its next request starts a fresh window.
func (l *Limiter) EvictExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	evicted := 0
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of client windows currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Start runs the idle-window eviction loop, sweeping at the given interval.
// This is a blocking function; run it in its own goroutine.
func (l *Limiter) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		l.EvictExpired()
	}
}
