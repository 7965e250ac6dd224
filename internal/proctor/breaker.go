package proctor

import (
	"sync"
	"time"
)

const (
	defaultFailureLimit  = 5
	defaultRetryCooldown = 30 * time.Second
)

// UploadBreaker pauses frame uploads after consecutive delivery failures,
// so a dead backend does not generate an endless stream of failure notices.
// While paused it lets one retry attempt through per cooldown interval; a
// successful upload resumes normal operation.
type UploadBreaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	threshold           int
	cooldown            time.Duration
	paused              bool
	retryAt             time.Time
}

// NewUploadBreaker creates a breaker. Non-positive arguments select the
// defaults.
func NewUploadBreaker(threshold int, cooldown time.Duration) *UploadBreaker {
	if threshold <= 0 {
		threshold = defaultFailureLimit
	}
	if cooldown <= 0 {
		cooldown = defaultRetryCooldown
	}
	return &UploadBreaker{threshold: threshold, cooldown: cooldown}
}

// Allow reports whether an upload attempt may start at now. Open breaker:
// attempts are refused until the cooldown elapses, then exactly one retry is
// let through; the breaker stays open until that retry succeeds.
func (b *UploadBreaker) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.paused {
		return true
	}
	if now.Before(b.retryAt) {
		return false
	}
	b.retryAt = now.Add(b.cooldown)
	return true
}

// RecordFailure increments the failure counter and opens the breaker at the
// threshold.
func (b *UploadBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
	if b.consecutiveFailures >= b.threshold && !b.paused {
		b.paused = true
		b.retryAt = time.Now().Add(b.cooldown)
	}
}

// RecordSuccess resets the failure counter and closes the breaker.
func (b *UploadBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	b.paused = false
}

// Paused returns true while the breaker is open.
func (b *UploadBreaker) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Failures returns the current consecutive failure count.
func (b *UploadBreaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures
}
