package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/user/moodpick/internal/model"
	"github.com/user/moodpick/internal/utils"
)

// LookupCache 片名查询结果缓存
type LookupCache interface {
	Get(ctx context.Context, key string) (*model.MovieDetail, bool, error)
	Set(ctx context.Context, key string, detail *model.MovieDetail) error
}

// MemoryLookupCache 进程内 LRU 缓存
type MemoryLookupCache struct {
	cache *utils.SearchCache[*model.MovieDetail]
}

// NewMemoryLookupCache 创建进程内缓存
func NewMemoryLookupCache(size int, ttl time.Duration) *MemoryLookupCache {
	return &MemoryLookupCache{cache: utils.NewSearchCache[*model.MovieDetail](size, ttl)}
}

func (c *MemoryLookupCache) Get(_ context.Context, key string) (*model.MovieDetail, bool, error) {
	v, ok := c.cache.Get(key)
	return v, ok, nil
}

func (c *MemoryLookupCache) Set(_ context.Context, key string, detail *model.MovieDetail) error {
	c.cache.Set(key, detail)
	return nil
}

const redisLookupPrefix = "moodpick:lookup:"

// RedisLookupCache 多实例共享的 redis 缓存
type RedisLookupCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisLookupCache 创建 redis 缓存
func NewRedisLookupCache(client redis.UniversalClient, ttl time.Duration) *RedisLookupCache {
	return &RedisLookupCache{client: client, ttl: ttl}
}

func (c *RedisLookupCache) Get(ctx context.Context, key string) (*model.MovieDetail, bool, error) {
	data, err := c.client.Get(ctx, redisLookupPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var detail model.MovieDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, false, fmt.Errorf("decode cached detail: %w", err)
	}
	return &detail, true, nil
}

func (c *RedisLookupCache) Set(ctx context.Context, key string, detail *model.MovieDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, redisLookupPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
