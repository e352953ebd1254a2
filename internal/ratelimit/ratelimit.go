// Package ratelimit provides fixed-window request limiting keyed by
// caller identity, with in-process and Redis-backed windows.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"skillpadi/internal/api"
)

// Limiter answers whether one more request from key fits in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a per-process fixed window. Good enough for a single
// instance; use the Redis limiter when running more than one.
type MemoryLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*windowState
}

type windowState struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		window:  window,
		windows: make(map[string]*windowState),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	// Lazy sweep so abandoned keys do not accumulate.
	if len(l.windows) > 10000 {
		for k, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, k)
			}
		}
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &windowState{count: 1, resetAt: now.Add(l.window)}
		return true, nil
	}
	if w.count >= l.max {
		return false, nil
	}
	w.count++
	return true, nil
}

// Middleware rejects requests over the limit with 429. A limiter error
// fails open: dropping legitimate traffic because the limiter store is
// down is worse than briefly not limiting.
func Middleware(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), api.ClientIP(r))
			if err != nil {
				logger.Error("rate limiter error", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				api.Fail(w, logger, api.RateLimited("too many requests, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
