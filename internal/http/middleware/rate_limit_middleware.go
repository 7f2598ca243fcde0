package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type RateLimitPolicy struct {
	Limit  int
	Window time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, policy RateLimitPolicy) (Decision, error)
}

type FailureMode string

const (
	// FailOpen lets traffic through when the limiter backend is down; the
	// track pipeline prefers availability over throttling accuracy.
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

type RateLimiter struct {
	limiter Limiter
	policy  RateLimitPolicy
	mode    FailureMode
	scope   string
	keyFunc func(r *http.Request) string
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewDistributedRateLimiter(NewLocalFixedWindowLimiter(), limit, window, FailOpen, "local")
}

func NewDistributedRateLimiter(limiter Limiter, limit int, window time.Duration, mode FailureMode, scope string) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		policy:  RateLimitPolicy{Limit: limit, Window: window},
		mode:    mode,
		scope:   scope,
		keyFunc: ClientIPKey,
	}
}

// ClientIPKey buckets by the address chi's RealIP middleware resolved.
func ClientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := rl.limiter.Allow(r.Context(), rl.keyFunc(r), rl.policy)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable",
					"scope", rl.scope, "error", err)
				if rl.mode == FailClosed {
					writeLimited(w, rl.policy.Window)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Allowed {
				writeLimited(w, decision.RetryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(retryAfter / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"ok":false}`))
}

type localFixedWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*localWindow
}

type localWindow struct {
	start time.Time
	count int
}

func NewLocalFixedWindowLimiter() Limiter {
	return &localFixedWindowLimiter{windows: make(map[string]*localWindow)}
}

func (l *localFixedWindowLimiter) Allow(_ context.Context, key string, policy RateLimitPolicy) (Decision, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	win, ok := l.windows[key]
	if !ok || now.Sub(win.start) >= policy.Window {
		// opportunistic cleanup of stale buckets
		for k, w := range l.windows {
			if now.Sub(w.start) >= 2*policy.Window {
				delete(l.windows, k)
			}
		}
		win = &localWindow{start: now}
		l.windows[key] = win
	}

	if win.count >= policy.Limit {
		return Decision{
			Allowed:    false,
			RetryAfter: policy.Window - now.Sub(win.start),
		}, nil
	}
	win.count++
	return Decision{Allowed: true, Remaining: policy.Limit - win.count}, nil
}
