// Package ratelimiter is a token bucket per identity (member or IP).
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// take refills the bucket for the time passed and consumes one token if available.
func (b *bucket) take(now time.Time, rate, capacity float64) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens = min(capacity, b.tokens+elapsed*rate)
		b.lastRefill = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Limiter keeps one bucket per key. Buckets idle for longer than idleTTL are
// dropped during a periodic sweep.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      float64 // tokens per second
	capacity  float64
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func New(rate float64, capacity float64, idleTTL time.Duration) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*bucket),
		rate:      rate,
		capacity:  capacity,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// PerMinute allows n requests per minute with bursts of up to n.
func PerMinute(n int) *Limiter {
	return New(float64(n)/60, float64(n), time.Hour)
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	return b.take(now, l.rate, l.capacity)
}

// Len is the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep must be called with mu held.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) >= l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
