package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter rate-limits by identity (one token bucket per key) with a
// bounded map: entries expire after a TTL and the oldest entry is evicted
// when the map is full. It is injected wherever per-recipient throttling is
// needed instead of living as package-level state.
type KeyedLimiter struct {
	mu         sync.Mutex
	limit      rate.Limit
	burst      int
	ttl        time.Duration
	maxEntries int
	entries    map[string]*entry
	now        func() time.Time
}

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func New(limit rate.Limit, burst, maxEntries int, ttl time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		limit:      limit,
		burst:      burst,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
}

// Allow reports whether the keyed bucket has a token available now.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= l.maxEntries {
			l.evictOldest()
		}
		e = &entry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// Len reports the current number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *KeyedLimiter) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > l.ttl {
			delete(l.entries, k)
		}
	}
}

func (l *KeyedLimiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range l.entries {
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey = k
			oldest = e.lastSeen
		}
	}
	if oldestKey != "" {
		delete(l.entries, oldestKey)
	}
}
