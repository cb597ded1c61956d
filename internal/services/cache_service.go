package services

import (
	"context"
	"time"

	"afftrack/pkg/cache"
)

// CacheService is the slice of redis the rest of the code is allowed to
// touch. Repositories and the code registry take it by interface so tests
// can run without redis.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	redis *cache.RedisCache
}

func NewCacheService(redis *cache.RedisCache) CacheService {
	return &redisCacheService{redis: redis}
}

func (s *redisCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.redis.Get(ctx, key, dest)
}

func (s *redisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.redis.Set(ctx, key, value, expiration)
}

func (s *redisCacheService) Delete(ctx context.Context, keys ...string) error {
	return s.redis.Delete(ctx, keys...)
}

func (s *redisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	return s.redis.Exists(ctx, key)
}

func (s *redisCacheService) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, key, value, expiration)
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}
