package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kentbulteni/analytics-service/internal/health"
	"github.com/kentbulteni/analytics-service/internal/http/handler"
	"github.com/kentbulteni/analytics-service/internal/security"
	"github.com/kentbulteni/analytics-service/internal/service"
)

type stubIngest struct{}

func (stubIngest) Track(context.Context, service.TrackInput) (*service.TrackResult, error) {
	return &service.TrackResult{SessionID: "sess", NewSession: false, Counted: true}, nil
}

func newRouterTestDeps() Dependencies {
	cookies := security.NewCookieManager("kb_session_id", "", false, "lax", 720*time.Hour)
	return Dependencies{
		TrackHandler:      handler.NewTrackHandler(stubIngest{}, cookies),
		ContentHandler:    nil,
		TrackRateLimitRPM: 1000,
		APIRateLimitRPM:   1000,
		EnableOTelHTTP:    false,
	}
}

func perform(r http.Handler, method, target string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "10.10.10.10:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthReadyBranches(t *testing.T) {
	t.Run("nil readiness returns ready", func(t *testing.T) {
		dep := newRouterTestDeps()
		dep.Readiness = nil
		r := NewRouter(dep)

		rr := perform(r, http.MethodGet, "/health/ready", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"status":"ready"`) {
			t.Fatalf("expected ready status payload, got %s", rr.Body.String())
		}
	})

	t.Run("unready dependency returns 503", func(t *testing.T) {
		dep := newRouterTestDeps()
		dep.Readiness = health.NewProbeRunner(health.Probe{
			Name:  "postgres",
			Check: func(context.Context) error { return errors.New("db down") },
		})
		r := NewRouter(dep)

		rr := perform(r, http.MethodGet, "/health/ready", nil, "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"code":"DEPENDENCY_UNREADY"`) {
			t.Fatalf("expected DEPENDENCY_UNREADY error envelope, got %s", rr.Body.String())
		}
	})
}

func TestRouterHealthLiveAlwaysOK(t *testing.T) {
	dep := newRouterTestDeps()
	r := NewRouter(dep)

	rr := perform(r, http.MethodGet, "/health/live", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("expected health live payload, got %s", rr.Body.String())
	}
}

func TestRouterTrackViewWired(t *testing.T) {
	dep := newRouterTestDeps()
	r := NewRouter(dep)

	rr := perform(r, http.MethodPost, "/track-view", nil, `{"contentType":"news","contentId":"n1","route":"/news/x"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var ack map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack["ok"] {
		t.Fatal("expected ok=true")
	}
}

func TestRouterTrackRateLimiterScopedToTrackView(t *testing.T) {
	dep := newRouterTestDeps()
	dep.TrackRateLimitRPM = 1
	r := NewRouter(dep)

	first := perform(r, http.MethodPost, "/track-view", nil, `{"contentType":"page","route":"/about"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", first.Code)
	}
	second := perform(r, http.MethodPost, "/track-view", nil, `{"contentType":"page","route":"/about"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on limited response")
	}

	// health endpoints are outside the track limiter
	live := perform(r, http.MethodGet, "/health/live", nil, "")
	if live.Code != http.StatusOK {
		t.Fatalf("health endpoint must not share the track limiter, got %d", live.Code)
	}
}

func TestRouterCustomTrackLimiterOverride(t *testing.T) {
	dep := newRouterTestDeps()
	hits := 0
	dep.TrackRateLimiter = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			next.ServeHTTP(w, r)
		})
	}
	r := NewRouter(dep)

	perform(r, http.MethodPost, "/track-view", nil, `{"contentType":"page","route":"/about"}`)
	if hits != 1 {
		t.Fatalf("expected custom limiter to be used, hits=%d", hits)
	}
}

func TestRouterSecurityHeadersApplied(t *testing.T) {
	dep := newRouterTestDeps()
	r := NewRouter(dep)

	rr := perform(r, http.MethodGet, "/health/live", nil, "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
}
