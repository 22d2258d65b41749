// Package ratelimit implements a fixed-window request counter keyed by
// client identifier. Fixed windows allow bursts of up to twice the limit
// across a window boundary, which is fine for abuse deterrence.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultLimit  = 100
	DefaultWindow = 60 * time.Second
)

type Result struct {
	Allowed   bool
	Remaining int

	// How long the client should wait before retrying, zero when allowed
	RetryAfter time.Duration
}

type Limiter interface {
	// Allow counts a request for key and reports whether it fits the window.
	// Counting must be atomic: concurrent calls for the same key never lose
	// increments.
	Allow(ctx context.Context, key string) (Result, error)
}
