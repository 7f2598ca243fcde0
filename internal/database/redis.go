package database

import (
	"github.com/redis/go-redis/v9"

	"github.com/kentbulteni/analytics-service/internal/config"
)

// OpenRedis returns nil when no redis endpoint is configured; callers fall
// back to their database-backed counterparts.
func OpenRedis(cfg *config.Config) redis.UniversalClient {
	if !cfg.RedisEnabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
