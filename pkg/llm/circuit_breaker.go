package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitState is the breaker position.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker trips after Threshold consecutive provider failures and lets a
// single probe through once ResetAfter has elapsed.
type CircuitBreaker struct {
	mu         sync.Mutex
	threshold  int
	resetAfter time.Duration
	failures   int
	openedAt   time.Time
	state      CircuitState
	now        func() time.Time
}

// NewCircuitBreaker creates a closed breaker. Non-positive settings fall back
// to 5 failures and 30 seconds.
func NewCircuitBreaker(threshold int, resetAfter time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 5
	}
	if resetAfter <= 0 {
		resetAfter = 30 * time.Second
	}
	return &CircuitBreaker{
		threshold:  threshold,
		resetAfter: resetAfter,
		now:        time.Now,
	}
}

// Allow reports whether a call may proceed. The returned error is an *Error
// of type circuit_open.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) >= cb.resetAfter {
			cb.state = CircuitHalfOpen
			return nil
		}
		return NewError(ErrorTypeCircuitOpen,
			fmt.Sprintf("provider unavailable after %d consecutive failures", cb.failures), true, nil)
	default:
		return NewError(ErrorTypeCircuitOpen, "probe request already in flight", true, nil)
	}
}

// Record feeds a call outcome back into the breaker.
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		cb.state = CircuitClosed
		return
	}

	cb.failures++
	if cb.state == CircuitHalfOpen || cb.failures >= cb.threshold {
		cb.state = CircuitOpen
		cb.openedAt = cb.now()
	}
}

// Release settles a half-open probe whose outcome says nothing about the
// provider. The breaker returns to open with its original openedAt, so the
// next Allow starts a fresh probe. No-op in any other state.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
}

// State returns the current position.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the failure streak.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// countsAsFailure excludes outcomes that say nothing about provider health:
// the caller giving up and malformed-but-delivered answers.
func countsAsFailure(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return false
	}
	switch GetErrorType(err) {
	case ErrorTypeAuth, ErrorTypeModel, ErrorTypeCircuitOpen:
		return false
	}
	return true
}
