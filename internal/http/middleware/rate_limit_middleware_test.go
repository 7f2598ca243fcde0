package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLocalFixedWindowLimiter(t *testing.T) {
	limiter := NewLocalFixedWindowLimiter()
	policy := RateLimitPolicy{Limit: 3, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "ip-1", policy)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	d, err := limiter.Allow(ctx, "ip-1", policy)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("fourth request in window must be rejected")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Fatalf("unexpected retry-after %v", d.RetryAfter)
	}

	// other keys are unaffected
	if d, _ := limiter.Allow(ctx, "ip-2", policy); !d.Allowed {
		t.Fatal("separate key must have its own window")
	}
}

func TestRateLimiterMiddlewareRejects(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/track-view", nil)
	req.RemoteAddr = "203.0.113.9:4411"

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rr.Body.String() != `{"ok":false}` {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, RateLimitPolicy) (Decision, error) {
	return Decision{}, context.DeadlineExceeded
}

func TestRateLimiterFailureModes(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	open := NewDistributedRateLimiter(failingLimiter{}, 1, time.Minute, FailOpen, "test")
	rr := httptest.NewRecorder()
	open.Middleware()(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("fail-open must pass traffic, got %d", rr.Code)
	}

	closed := NewDistributedRateLimiter(failingLimiter{}, 1, time.Minute, FailClosed, "test")
	rr = httptest.NewRecorder()
	closed.Middleware()(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("fail-closed must reject traffic, got %d", rr.Code)
	}
}

func TestClientIPKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4411"
	if got := ClientIPKey(r); got != "203.0.113.9" {
		t.Fatalf("unexpected key %q", got)
	}
	r.RemoteAddr = "203.0.113.9"
	if got := ClientIPKey(r); got != "203.0.113.9" {
		t.Fatalf("unexpected key without port %q", got)
	}
}
