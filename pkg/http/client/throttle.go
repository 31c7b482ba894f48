package client

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent caps in-flight outbound requests when no explicit
// limit is configured.
const DefaultMaxConcurrent = 99

// Throttle bounds the number of concurrently in-flight outbound requests
// process-wide. One instance is constructed at startup and injected into
// every outbound client. Admission is not FIFO, but every waiter is
// admitted once capacity frees up.
type Throttle struct {
	sem *semaphore.Weighted
}

// NewThrottle creates a throttle admitting at most maxConcurrent callers.
// Non-positive values fall back to DefaultMaxConcurrent.
func NewThrottle(maxConcurrent int64) *Throttle {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Throttle{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Acquire blocks until a slot is free or ctx is cancelled.
func (t *Throttle) Acquire(ctx context.Context) error {
	return t.sem.Acquire(ctx, 1)
}

// Release frees a slot previously obtained with Acquire.
func (t *Throttle) Release() {
	t.sem.Release(1)
}
