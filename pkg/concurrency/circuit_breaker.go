package concurrency

import (
	"sync"
	"sync/atomic"
	"time"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int32

const (
	// StateClosed indicates the circuit is closed and operations are allowed
	StateClosed CircuitBreakerState = 0

	// StateOpen indicates the circuit is open and operations are blocked
	StateOpen CircuitBreakerState = 1

	// StateHalfOpen indicates the circuit is testing if it should close
	StateHalfOpen CircuitBreakerState = 2
)

// halfOpenSuccesses is the number of consecutive successes in half-open
// state needed to close the circuit again.
const halfOpenSuccesses = 5

// CircuitBreaker stops hammering a failing collaborator, typically the
// streaming broker, until it has had time to recover.
type CircuitBreaker struct {
	state                int32 // atomic: CircuitBreakerState
	consecutiveFailures  int64 // atomic
	consecutiveSuccesses int64 // atomic
	failureThreshold     int64
	resetTimeout         time.Duration
	lastFailureTime      int64 // atomic: Unix nano timestamp
	mu                   sync.Mutex
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold
// consecutive failures and probes again after resetTimeout.
func NewCircuitBreaker(failureThreshold int64, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 10
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// IsOpen reports whether operations are currently blocked. An open circuit
// transitions to half-open once the reset timeout has elapsed.
func (cb *CircuitBreaker) IsOpen() bool {
	if CircuitBreakerState(atomic.LoadInt32(&cb.state)) != StateOpen {
		return false
	}
	lastFailure := atomic.LoadInt64(&cb.lastFailureTime)
	if lastFailure > 0 && time.Since(time.Unix(0, lastFailure)) > cb.resetTimeout {
		cb.transitionTo(StateHalfOpen)
		return false
	}
	return true
}

// RecordSuccess records a successful operation
func (cb *CircuitBreaker) RecordSuccess() {
	atomic.StoreInt64(&cb.consecutiveFailures, 0)

	if CircuitBreakerState(atomic.LoadInt32(&cb.state)) == StateHalfOpen {
		if atomic.AddInt64(&cb.consecutiveSuccesses, 1) >= halfOpenSuccesses {
			cb.transitionTo(StateClosed)
		}
	}
}

// RecordFailure records a failed operation
func (cb *CircuitBreaker) RecordFailure() {
	atomic.StoreInt64(&cb.consecutiveSuccesses, 0)
	atomic.StoreInt64(&cb.lastFailureTime, time.Now().UnixNano())
	failures := atomic.AddInt64(&cb.consecutiveFailures, 1)

	switch CircuitBreakerState(atomic.LoadInt32(&cb.state)) {
	case StateClosed:
		if failures >= cb.failureThreshold {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		// Any failure while probing reopens the circuit
		cb.transitionTo(StateOpen)
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	return CircuitBreakerState(atomic.LoadInt32(&cb.state))
}

// Reset forces the breaker back to closed
func (cb *CircuitBreaker) Reset() {
	cb.transitionTo(StateClosed)
	atomic.StoreInt64(&cb.lastFailureTime, 0)
}

func (cb *CircuitBreaker) transitionTo(newState CircuitBreakerState) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if CircuitBreakerState(atomic.LoadInt32(&cb.state)) == newState {
		return
	}
	atomic.StoreInt32(&cb.state, int32(newState))

	switch newState {
	case StateClosed:
		atomic.StoreInt64(&cb.consecutiveFailures, 0)
		atomic.StoreInt64(&cb.consecutiveSuccesses, 0)
	case StateHalfOpen:
		atomic.StoreInt64(&cb.consecutiveSuccesses, 0)
	}
}

// String returns the string representation of the circuit breaker state
func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}
