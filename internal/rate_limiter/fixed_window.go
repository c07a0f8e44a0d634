package ratelimiter

import (
	"context"
	"strings"
	"sync"
	"time"
)

type FixedWindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	byKey  map[string]windowState
	now    func() time.Time
}

type windowState struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		byKey:  map[string]windowState{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.now == nil {
		return l.AllowAt(key, time.Now().UTC()), nil
	}
	return l.AllowAt(key, l.now()), nil
}

// AllowAt counts one request for key at now. A limit <= 0 disables limiting.
func (l *FixedWindowLimiter) AllowAt(key string, now time.Time) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(now)

	cur := l.byKey[key]
	if cur.start.IsZero() || now.Sub(cur.start) >= l.window {
		l.byKey[key] = windowState{start: now, count: 1}
		return true
	}
	if cur.count >= l.limit {
		return false
	}
	cur.count++
	l.byKey[key] = cur
	return true
}

// evict drops expired windows once the map grows, so one-off clients do not pile up.
func (l *FixedWindowLimiter) evict(now time.Time) {
	if len(l.byKey) < 4096 {
		return
	}
	for k, s := range l.byKey {
		if now.Sub(s.start) >= l.window {
			delete(l.byKey, k)
		}
	}
}
