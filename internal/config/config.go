package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HashPepper string

	SessionCookieName string
	SessionCookieTTL  time.Duration
	CookieDomain      string
	CookieSecure      bool
	CookieSameSite    string

	ViewLockWindow time.Duration

	TrackRateLimitPerMin int
	APIRateLimitPerMin   int

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  getEnvInt("REDIS_DB", 0),
		HashPepper:               os.Getenv("ANALYTICS_HASH_PEPPER"),
		SessionCookieName:        getEnv("SESSION_COOKIE_NAME", "kb_session_id"),
		CookieDomain:             os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:             getEnvBool("COOKIE_SECURE", true),
		CookieSameSite:           strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		TrackRateLimitPerMin:     getEnvInt("TRACK_RATE_LIMIT_PER_MIN", 120),
		APIRateLimitPerMin:       getEnvInt("API_RATE_LIMIT_PER_MIN", 300),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "analytics-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracesEnabled:        getEnvBool("OTEL_TRACES_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
	}

	cookieTTL, err := time.ParseDuration(getEnv("SESSION_COOKIE_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_COOKIE_TTL: %w", err)
	}
	cfg.SessionCookieTTL = cookieTTL

	lockWindow, err := time.ParseDuration(getEnv("VIEW_LOCK_WINDOW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("parse VIEW_LOCK_WINDOW: %w", err)
	}
	cfg.ViewLockWindow = lockWindow

	exportInterval, err := time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "15s"))
	if err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}
	cfg.OTELMetricsExportInterval = exportInterval

	if err := cfg.Validate(); err != nil {
		recordConfigValidationEvent(context.Background(), cfg.Env, "error", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(context.Background(), cfg.Env, "success", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.HashPepper) < 16 {
		errs = append(errs, "ANALYTICS_HASH_PEPPER must be at least 16 chars")
	}
	if c.SessionCookieName == "" {
		errs = append(errs, "SESSION_COOKIE_NAME must not be empty")
	}
	if c.SessionCookieTTL <= 0 || c.SessionCookieTTL > 365*24*time.Hour {
		errs = append(errs, "SESSION_COOKIE_TTL must be between 1s and 365d")
	}
	if c.ViewLockWindow < time.Second || c.ViewLockWindow > time.Hour {
		errs = append(errs, "VIEW_LOCK_WINDOW must be between 1s and 1h")
	}
	if c.TrackRateLimitPerMin <= 0 {
		errs = append(errs, "TRACK_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// RedisEnabled reports whether a redis endpoint was configured. Without it
// the service falls back to the database-backed lock store and local rate
// limiting.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
