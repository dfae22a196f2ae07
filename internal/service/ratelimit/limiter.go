package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// Limiter keeps one token bucket per key (client address).
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*entry
	limit rate.Limit
	burst int
	idle  time.Duration
	nowFn func() time.Time
}

// New creates a limiter refilling perMinute tokens each minute up to burst.
func New(perMinute float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		m:     make(map[string]*entry),
		limit: rate.Limit(perMinute / 60),
		burst: burst,
		idle:  time.Hour,
		nowFn: time.Now,
	}
}

// Allow reports whether one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.nowFn()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.m[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.m[key] = e
	}
	e.seen = now
	l.evictLocked(now)
	return e.limiter.AllowN(now, 1)
}

func (l *Limiter) evictLocked(now time.Time) {
	for k, e := range l.m {
		if now.Sub(e.seen) > l.idle {
			delete(l.m, k)
		}
	}
}
