package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TokenLimiter enforces a tokens-per-minute budget for model calls.
// The budget refills at the start of each one-minute window.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	remaining   int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMin tokens per minute.
func NewTokenLimiter(maxPerMin int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMin,
		remaining:   maxPerMin,
		windowStart: time.Now(),
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.remaining
}

// Wait blocks until n tokens are available or the context is done.
// Requests larger than the full budget are allowed through once the
// window is fresh, since they could otherwise never proceed.
func (l *TokenLimiter) Wait(ctx context.Context, n int) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.remaining >= n || (n > l.maxPerMin && l.remaining == l.maxPerMin) {
			l.remaining -= n
			if l.remaining < 0 {
				l.remaining = 0
			}
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.windowStart.Add(time.Minute))
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("token limiter wait canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (l *TokenLimiter) refill() {
	if time.Since(l.windowStart) >= time.Minute {
		l.remaining = l.maxPerMin
		l.windowStart = time.Now()
	}
}
