// Package concurrency provides the semaphore that caps how many unit
// executions run at once across the whole registry.
package concurrency

import (
	"context"
	"sync/atomic"
	"time"
)

// Metrics is a snapshot of limiter activity.
type Metrics struct {
	TotalAcquired   int64
	TotalReleased   int64
	PeakConcurrent  int64
	TotalWaitTimeNs int64
}

// Limiter bounds concurrent executions with a buffered-channel semaphore and
// tracks how long callers waited for a slot.
type Limiter struct {
	sem    chan struct{}
	active int64

	totalAcquired  int64
	totalReleased  int64
	peakConcurrent int64
	totalWaitNs    int64
}

// NewLimiter creates a limiter admitting at most maxConcurrent executions.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Limiter{sem: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot is free or the context is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	start := time.Now()
	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.totalWaitNs, time.Since(start).Nanoseconds())
		atomic.AddInt64(&l.totalAcquired, 1)
		l.updatePeak(atomic.AddInt64(&l.active, 1))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the limiter.
func (l *Limiter) Release() {
	select {
	case <-l.sem:
		atomic.AddInt64(&l.active, -1)
		atomic.AddInt64(&l.totalReleased, 1)
	default:
		// Release without a matching Acquire.
	}
}

// Do runs fn while holding a slot.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// CurrentActive returns the number of executions currently holding a slot.
func (l *Limiter) CurrentActive() int64 {
	return atomic.LoadInt64(&l.active)
}

// Snapshot returns a copy of the limiter's counters.
func (l *Limiter) Snapshot() Metrics {
	return Metrics{
		TotalAcquired:   atomic.LoadInt64(&l.totalAcquired),
		TotalReleased:   atomic.LoadInt64(&l.totalReleased),
		PeakConcurrent:  atomic.LoadInt64(&l.peakConcurrent),
		TotalWaitTimeNs: atomic.LoadInt64(&l.totalWaitNs),
	}
}

// AverageWaitTime reports the mean time callers spent waiting for a slot.
func (l *Limiter) AverageWaitTime() time.Duration {
	m := l.Snapshot()
	if m.TotalAcquired == 0 {
		return 0
	}
	return time.Duration(m.TotalWaitTimeNs / m.TotalAcquired)
}

func (l *Limiter) updatePeak(current int64) {
	for {
		peak := atomic.LoadInt64(&l.peakConcurrent)
		if current <= peak || atomic.CompareAndSwapInt64(&l.peakConcurrent, peak, current) {
			return
		}
	}
}
