// Package ratelimit paces outbound push deliveries per endpoint host. Push
// services throttle aggressively, so each host gets its own token bucket;
// a slow host never starves deliveries to the others.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupInterval is how often idle host buckets are swept.
	cleanupInterval = 10 * time.Minute
	// idleTTL is how long a host bucket may go unused before eviction.
	idleTTL = time.Hour
)

// entry is one host's bucket plus its last use, for idle eviction.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out an independent token bucket per key. Keys here
// are push endpoint hosts (fcm.googleapis.com, updates.push.services.mozilla.com, …).
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps sustained requests per key with
// the given burst, and starts the idle-bucket sweeper.
func New(rps float64, burst int) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go krl.sweep()

	return krl
}

// Allow reports whether a request for the key may proceed right now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.limiterFor(key).Allow()
}

// Wait blocks until a request for the key is allowed or the context ends.
// Outbound delivery uses this so a throttled host slows us down instead of
// dropping notifications.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.limiterFor(key).Wait(ctx)
}

// limiterFor returns the key's bucket, creating it on first use.
func (krl *KeyedRateLimiter) limiterFor(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

// Stop shuts down the sweeper goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// sweep evicts idle host buckets until Stop is called.
func (krl *KeyedRateLimiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			krl.evictIdle(idleTTL)
		case <-krl.done:
			return
		}
	}
}

// evictIdle drops buckets unused for longer than ttl. A re-created bucket
// starts with a full burst, which is acceptable after an hour of silence.
func (krl *KeyedRateLimiter) evictIdle(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	krl.mu.Lock()
	defer krl.mu.Unlock()

	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
		}
	}
}
