package app

import (
	"context"

	"golang.org/x/sync/semaphore"

	"statlab/internal/errors"
)

// RunLimiter bounds how many permutation tests execute at once, whichever
// transport started them. Trials are CPU bound, so excess callers wait for a
// slot until their context ends.
type RunLimiter struct {
	slots *semaphore.Weighted
}

// NewRunLimiter allows maxConcurrent simultaneous runs (at least one)
func NewRunLimiter(maxConcurrent int64) *RunLimiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &RunLimiter{slots: semaphore.NewWeighted(maxConcurrent)}
}

// Acquire waits for a slot. The caller must invoke release once its run is
// over. A nil limiter never blocks.
func (l *RunLimiter) Acquire(ctx context.Context) (release func(), err error) {
	if l == nil {
		return func() {}, nil
	}
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return nil, errors.Unavailable("too many permutation tests running", err)
	}
	return func() { l.slots.Release(1) }, nil
}
