package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kentbulteni/analytics-service/internal/domain"
)

// AdCacheStore caches the serialized ad list so the carousel endpoint does
// not hit the database on every page render.
type AdCacheStore interface {
	Get(ctx context.Context) ([]domain.Ad, bool, error)
	Set(ctx context.Context, ads []domain.Ad, ttl time.Duration) error
}

type NoopAdCacheStore struct{}

func NewNoopAdCacheStore() *NoopAdCacheStore { return &NoopAdCacheStore{} }

func (s *NoopAdCacheStore) Get(context.Context) ([]domain.Ad, bool, error) { return nil, false, nil }

func (s *NoopAdCacheStore) Set(context.Context, []domain.Ad, time.Duration) error { return nil }

type RedisAdCacheStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedisAdCacheStore(client redis.UniversalClient, key string) *RedisAdCacheStore {
	if key == "" {
		key = "content:ads"
	}
	return &RedisAdCacheStore{client: client, key: key}
}

func (s *RedisAdCacheStore) Get(ctx context.Context) ([]domain.Ad, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ads []domain.Ad
	if err := json.Unmarshal(raw, &ads); err != nil {
		return nil, false, err
	}
	return ads, true, nil
}

func (s *RedisAdCacheStore) Set(ctx context.Context, ads []domain.Ad, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(ads)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, ttl).Err()
}
