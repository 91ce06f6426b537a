package resilience

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Breaker tracks consecutive failures of an expensive upstream (the headless
// renderer) and opens for a cooldown period once a threshold is crossed,
// letting callers degrade to the cheap path instead of queueing on a broken
// browser.
type Breaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	openUntil   time.Time

	name      string
	threshold int           // consecutive failures to trip
	window    time.Duration // failures must occur within this window
	cooldown  time.Duration // how long the breaker stays open

	nowFunc func() time.Time
}

// NewBreaker creates a Breaker. threshold consecutive failures within window
// open it for cooldown.
func NewBreaker(name string, threshold int, window, cooldown time.Duration) *Breaker {
	return &Breaker{
		name:      name,
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
		nowFunc:   time.Now,
	}
}

// IsOpen reports whether calls should be skipped right now.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nowFunc().Before(b.openUntil)
}

// RecordFailure counts a failure, opening the breaker once the threshold of
// consecutive in-window failures is reached.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.nowFunc()
	if now.Sub(b.lastFailure) > b.window {
		b.failures = 0
	}
	b.failures++
	b.lastFailure = now

	if b.failures >= b.threshold {
		b.openUntil = now.Add(b.cooldown)
		zap.L().Warn("circuit breaker opened",
			zap.String("breaker", b.name),
			zap.Int("failures", b.failures),
			zap.Duration("cooldown", b.cooldown),
		)
	}
}

// RecordSuccess resets the consecutive-failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}
