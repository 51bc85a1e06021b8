package infra

import (
	"errors"
	"sync"
	"time"
)

// The GGN registry lookup is an advisory sidecall on the expedition path. A
// slow or dead registry must not stall allocations, so calls go through a
// circuit breaker: closed → open after consecutive failures, open → half-open
// after a cooldown, half-open → closed after consecutive trial successes.

// CBState is the breaker state, exposed on /health.
type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is fast-failing.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures before tripping
	SuccessThreshold int           // half-open successes before closing
	OpenTimeout      time.Duration // cooldown before the first trial call
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

type CircuitBreaker struct {
	mu          sync.Mutex
	cfg         CircuitBreakerConfig
	state       CBState
	failures    int
	successes   int
	lastFailure time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State reports the current state, moving open → half-open once the cooldown
// has elapsed. Safe for concurrent use.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.lastFailure) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, in which case it fails fast
// with ErrCircuitOpen. fn's error is passed through unchanged.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

// recordFailure must be called under cb.mu.
func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = CBOpen
			cb.successes = 0
		}
	case CBHalfOpen:
		// trial call failed, back to fast-failing
		cb.state = CBOpen
		cb.failures = 0
	}
}

// recordSuccess must be called under cb.mu.
func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}
