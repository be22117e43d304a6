// Package ratelimit throttles API clients per route group with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of charging one request.
type Decision struct {
	Allowed    bool
	Limit      int // 0 when the request was not metered
	Remaining  int
	Reset      time.Time // when the bucket is full again
	RetryAfter time.Duration
}

// bucket refills continuously at rate tokens per second up to capacity.
type bucket struct {
	tokens   float64
	capacity float64
	rate     float64
	updated  time.Time
}

func newBucket(g RouteGroup, now time.Time) *bucket {
	capacity := g.Burst
	if capacity <= 0 {
		capacity = g.Limit
	}
	return &bucket{
		tokens:   float64(capacity),
		capacity: float64(capacity),
		rate:     float64(g.Limit) / g.Window.Seconds(),
		updated:  now,
	}
}

func (b *bucket) refill(now time.Time) {
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.updated).Seconds()*b.rate)
	b.updated = now
}

// take spends one token if available and reports what is left.
func (b *bucket) take(now time.Time) (ok bool, remaining int, full time.Time) {
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		ok = true
	}
	missing := b.capacity - b.tokens
	return ok, int(b.tokens), now.Add(time.Duration(missing / b.rate * float64(time.Second)))
}

// isFull reports whether the bucket would be indistinguishable from a new one.
func (b *bucket) isFull(now time.Time) bool {
	return b.tokens+now.Sub(b.updated).Seconds()*b.rate >= b.capacity
}

type bucketKey struct {
	client string
	group  string
	method string
}

// Limiter meters requests per client and route group, so
// /results/csee/2022/s0101 and /results/csee/2022/s0102 draw from one budget.
type Limiter struct {
	config    *Config
	now       func() time.Time
	mu        sync.Mutex
	buckets   map[bucketKey]*bucket
	nextSweep time.Time
}

// NewLimiter creates a limiter. A nil config meters every route at 300/min.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    300,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[bucketKey]*bucket),
	}
	l.nextSweep = l.now().Add(config.CleanupInterval)
	return l
}

// Allow charges one request from clientID to the route group of path.
func (l *Limiter) Allow(clientID, path, method string) Decision {
	switch {
	case !l.config.Enabled, l.config.Whitelist[clientID]:
		return Decision{Allowed: true}
	case l.config.Blacklist[clientID]:
		return Decision{Allowed: false}
	}

	group := l.config.groupFor(path, method)
	if group.Limit <= 0 || group.Window <= 0 {
		return Decision{Allowed: true}
	}

	now := l.now()
	key := bucketKey{client: clientID, group: group.Path, method: method}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(group, now)
		l.buckets[key] = b
	}
	allowed, remaining, full := b.take(now)

	d := Decision{Allowed: allowed, Limit: group.Limit, Remaining: remaining, Reset: full}
	if !allowed {
		// Time until one token is back.
		d.RetryAfter = time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	}
	return d
}

// sweep drops full buckets once per CleanupInterval. Callers hold l.mu.
func (l *Limiter) sweep(now time.Time) {
	if l.config.CleanupInterval <= 0 || now.Before(l.nextSweep) {
		return
	}
	for key, b := range l.buckets {
		if b.isFull(now) {
			delete(l.buckets, key)
		}
	}
	l.nextSweep = now.Add(l.config.CleanupInterval)
}
