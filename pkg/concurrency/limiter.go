// Package concurrency provides the semaphore limiter that bounds parallel
// per-point volume binding and the circuit breaker that shields the
// streaming publisher from a persistently failing broker.
package concurrency

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics tracks limiter usage counters
type Metrics struct {
	TotalAcquired   int64
	TotalReleased   int64
	PeakConcurrent  int64
	TotalWaitTimeNs int64
}

// Limiter provides semaphore-based concurrency control with observability.
// Volume binding uses it to fan point binding out over a bounded number of
// goroutines; the registry slots per point are disjoint, so the semaphore
// is the only synchronization required.
type Limiter struct {
	sem     chan struct{}
	active  int64
	metrics Metrics
	breaker *CircuitBreaker
}

// NewLimiter creates a limiter allowing at most maxConcurrent concurrent
// operations. A non-positive value sizes the limiter to the CPU count.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &Limiter{
		sem:     make(chan struct{}, maxConcurrent),
		breaker: NewCircuitBreaker(100, 30*time.Second),
	}
}

// NewLimiterWithBreaker creates a limiter with a custom circuit breaker
func NewLimiterWithBreaker(maxConcurrent int, breaker *CircuitBreaker) *Limiter {
	l := NewLimiter(maxConcurrent)
	if breaker != nil {
		l.breaker = breaker
	}
	return l
}

// Acquire claims a slot, blocking until one is free or the context is
// cancelled. Returns an error if the circuit breaker is open.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.breaker.IsOpen() {
		return fmt.Errorf("circuit breaker is open")
	}

	start := time.Now()
	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.metrics.TotalWaitTimeNs, time.Since(start).Nanoseconds())
		atomic.AddInt64(&l.metrics.TotalAcquired, 1)
		l.updatePeak(atomic.AddInt64(&l.active, 1))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the limiter
func (l *Limiter) Release() {
	select {
	case <-l.sem:
		atomic.AddInt64(&l.active, -1)
		atomic.AddInt64(&l.metrics.TotalReleased, 1)
	default:
		// Release without a matching Acquire; ignore
	}
}

// Go runs fn on its own goroutine once a slot is acquired. The function's
// outcome feeds the circuit breaker.
func (l *Limiter) Go(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}

	go func() {
		defer l.Release()
		if err := fn(); err != nil {
			l.breaker.RecordFailure()
		} else {
			l.breaker.RecordSuccess()
		}
	}()

	return nil
}

// GoSync runs fn on the calling goroutine once a slot is acquired
func (l *Limiter) GoSync(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()

	if err := fn(); err != nil {
		l.breaker.RecordFailure()
		return err
	}
	l.breaker.RecordSuccess()
	return nil
}

// CurrentActive returns the number of currently held slots
func (l *Limiter) CurrentActive() int64 {
	return atomic.LoadInt64(&l.active)
}

// GetMetrics returns a snapshot of the usage counters
func (l *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalAcquired:   atomic.LoadInt64(&l.metrics.TotalAcquired),
		TotalReleased:   atomic.LoadInt64(&l.metrics.TotalReleased),
		PeakConcurrent:  atomic.LoadInt64(&l.metrics.PeakConcurrent),
		TotalWaitTimeNs: atomic.LoadInt64(&l.metrics.TotalWaitTimeNs),
	}
}

func (l *Limiter) updatePeak(current int64) {
	for {
		peak := atomic.LoadInt64(&l.metrics.PeakConcurrent)
		if current <= peak || atomic.CompareAndSwapInt64(&l.metrics.PeakConcurrent, peak, current) {
			return
		}
	}
}
