package publisher

import (
	"sync"
	"time"
)

// Limiter enforces a minimum interval between publishes per token. Entries
// idle for several intervals are evicted on the next Allow call so the map
// stays bounded by the recently active token set.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[int64]time.Time
}

func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		last:     map[int64]time.Time{},
	}
}

func (l *Limiter) Allow(tokenID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.interval <= 0 {
		return true
	}
	if last, ok := l.last[tokenID]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[tokenID] = now
	l.evict(now)
	return true
}

func (l *Limiter) evict(now time.Time) {
	horizon := 4 * l.interval
	for id, last := range l.last {
		if now.Sub(last) > horizon {
			delete(l.last, id)
		}
	}
}
