package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket guarding the upstream request budget. The
// provider's free tier allows only a handful of calls per minute, so burning
// a request the provider will refuse anyway is pure waste.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// New creates a limiter holding capacity tokens refilled at refillPerMin.
func New(capacity, refillPerMin float64) *Limiter {
	return &Limiter{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillPerMin / 60,
		last:       time.Now(),
	}
}

// Allow returns true if one token could be consumed.
func (l *Limiter) Allow() bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := now.Sub(l.last).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.refillRate
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.last = now
	}
	if l.tokens >= 1 {
		l.tokens -= 1
		return true
	}
	return false
}
