package bankclient

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig holds circuit breaker configuration. Zero values fall
// back to sensible defaults.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that trips the
	// breaker open. Defaults to 5.
	FailureThreshold uint32

	// RecoveryTimeout is how long the breaker stays open before probing the
	// backend again. Defaults to 60s.
	RecoveryTimeout time.Duration

	// MaxRequests is the number of probe requests allowed while half-open.
	// Defaults to 2.
	MaxRequests uint32

	// Interval is the cyclic period in which the closed-state counters are
	// cleared. Zero keeps counts for the whole closed period.
	Interval time.Duration
}

func newCircuitBreaker(config CircuitBreakerConfig) *gobreaker.CircuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	if config.MaxRequests == 0 {
		config.MaxRequests = 2
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bankclient",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
	})
}

// rateLimiter is a token bucket: maxTokens capacity, one token refilled every
// refillRate.
type rateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

func newRateLimiter(maxTokens int, refillRate time.Duration) *rateLimiter {
	return &rateLimiter{
		maxTokens:  maxTokens,
		tokens:     maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available.
func (rl *rateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	tokensToAdd := int(elapsed / rl.refillRate)
	if tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = now
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}
