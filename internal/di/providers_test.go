package di

import (
	"testing"
	"time"

	"github.com/kentbulteni/analytics-service/internal/config"
	"github.com/kentbulteni/analytics-service/internal/http/router"
)

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}
	srv := provideHTTPServer(cfg, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.ReadTimeout.Seconds() != 10 {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}
}

func TestProvideRouterDependencies(t *testing.T) {
	cfg := &config.Config{TrackRateLimitPerMin: 120, APIRateLimitPerMin: 300}
	dep := provideRouterDependencies(nil, nil, nil, nil, nil, cfg)
	if dep.TrackRateLimitRPM != 120 || dep.APIRateLimitRPM != 300 {
		t.Fatalf("unexpected rate limits: %+v", dep)
	}
	_ = router.Dependencies(dep)
}

func TestProvideViewLockStoreFallsBackToDatabase(t *testing.T) {
	cfg := &config.Config{ViewLockWindow: 30 * time.Second}
	store := provideViewLockStore(cfg, nil, nil)
	if store == nil {
		t.Fatal("expected a database-backed lock store when redis is absent")
	}
}

func TestProvideLimitersNilWithoutRedis(t *testing.T) {
	cfg := &config.Config{TrackRateLimitPerMin: 120, APIRateLimitPerMin: 300}
	if provideTrackRateLimiter(cfg, nil) != nil {
		t.Fatal("expected nil track limiter without redis, router falls back to the local one")
	}
	if provideAPIRateLimiter(cfg, nil) != nil {
		t.Fatal("expected nil api limiter without redis")
	}
}
