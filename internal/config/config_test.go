package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/analytics")
	t.Setenv("ANALYTICS_HASH_PEPPER", "0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SessionCookieName != "kb_session_id" {
		t.Fatalf("unexpected cookie name %q", cfg.SessionCookieName)
	}
	if cfg.SessionCookieTTL != 720*time.Hour {
		t.Fatalf("unexpected cookie ttl %v", cfg.SessionCookieTTL)
	}
	if cfg.ViewLockWindow != 30*time.Second {
		t.Fatalf("unexpected lock window %v", cfg.ViewLockWindow)
	}
	if cfg.CookieSameSite != "lax" {
		t.Fatalf("unexpected samesite %q", cfg.CookieSameSite)
	}
	if cfg.RedisEnabled() {
		t.Fatal("redis should be disabled without REDIS_ADDR")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ANALYTICS_HASH_PEPPER", "0123456789abcdef")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL validation error, got %v", err)
	}
}

func TestLoadRejectsShortPepper(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/analytics")
	t.Setenv("ANALYTICS_HASH_PEPPER", "short")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "ANALYTICS_HASH_PEPPER") {
		t.Fatalf("expected pepper validation error, got %v", err)
	}
}

func TestLoadRejectsBadLockWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VIEW_LOCK_WINDOW", "100ms")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "VIEW_LOCK_WINDOW") {
		t.Fatalf("expected lock window validation error, got %v", err)
	}
}

func TestLoadParsesRedisSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.RedisEnabled() {
		t.Fatal("expected redis enabled")
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("unexpected redis db %d", cfg.RedisDB)
	}
}
