// Package middleware provides the HTTP middleware stack used by the kernel.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/ayoo/pkg/response"
)

// window is one client's fixed-window request count.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows each client key a fixed number of requests per window.
// Expired windows are evicted lazily, at most once per window length.
type Limiter struct {
	max    int
	length time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*window
	nextSweep time.Time
}

func NewLimiter(max int, length time.Duration) *Limiter {
	return &Limiter{max: max, length: length, now: time.Now, clients: make(map[string]*window)}
}

// Allow counts one request from key. When the budget is spent it returns
// false and the time until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, k)
			}
		}
		l.nextSweep = now.Add(l.length)
	}

	w, ok := l.clients[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.length)}
		l.clients[key] = w
	}
	w.count++
	if w.count > l.max {
		return false, w.resetAt.Sub(now)
	}
	return true, 0
}

// Middleware answers 429 with Retry-After once a client is over budget.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	limit := strconv.Itoa(l.max)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", limit)
		if ok, retry := l.Allow(clientKey(r)); !ok {
			response.TooManyRequests(w, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit is shorthand for NewLimiter(max, length).Middleware.
func RateLimit(max int, length time.Duration) func(http.Handler) http.Handler {
	return NewLimiter(max, length).Middleware
}

// clientKey is the first X-Forwarded-For hop, else the remote host.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i != -1 {
		host = host[:i]
	}
	return host
}
