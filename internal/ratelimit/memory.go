package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the in-process limiter used for single-node runs and
// tests. The mutex makes increments atomic per process; multi-node
// deployments need the Redis limiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	window    time.Duration
	nextSweep time.Time

	// injectable clock
	now func() time.Time
}

func NewMemoryLimiter(limit int, windowSize time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}

	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		window:  windowSize,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// Expired windows pile up as distinct clients come and go,
	// sweep them out at most once per window length
	if now.After(l.nextSweep) {
		for k, w := range l.windows {
			if !w.resetAt.After(now) {
				delete(l.windows, k)
			}
		}
		l.nextSweep = now.Add(l.window)
	}

	w, ok := l.windows[key]
	if !ok || !w.resetAt.After(now) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.window)}
		return Result{Allowed: true, Remaining: l.limit - 1}, nil
	}

	w.count++
	if w.count > l.limit {
		retryAfter := w.resetAt.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: l.limit - w.count}, nil
}
