// Package cache holds the keyword-id cache shared by service replicas.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LugiaKB/cinemind-backend/pkg/metrics"
)

const keyPrefix = "cinemind:tmdb:keyword:"

// KeywordCache maps a keyword text to its catalog id. Only matches are cached.
type KeywordCache interface {
	Get(ctx context.Context, keyword string) (id int64, found bool, err error)
	Set(ctx context.Context, keyword string, id int64) error
}

// NewKeywordCache returns a Redis-backed cache, or a no-op cache when client is nil.
func NewKeywordCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) KeywordCache {
	if client == nil {
		return NoopKeywordCache{}
	}
	return &redisKeywordCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("keyword-cache"),
	}
}

type redisKeywordCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ KeywordCache = (*redisKeywordCache)(nil)

func (c *redisKeywordCache) Get(ctx context.Context, keyword string) (int64, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(keyword)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.RecordKeywordCacheLookup("miss")
		return 0, false, nil
	}
	if err != nil {
		metrics.RecordKeywordCacheLookup("error")
		return 0, false, fmt.Errorf("failed to read keyword cache: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		c.logger.Warn("Dropping corrupt keyword cache entry",
			zap.String("keyword", keyword), zap.String("value", val))
		_ = c.client.Del(ctx, cacheKey(keyword)).Err()
		metrics.RecordKeywordCacheLookup("miss")
		return 0, false, nil
	}

	metrics.RecordKeywordCacheLookup("hit")
	return id, true, nil
}

func (c *redisKeywordCache) Set(ctx context.Context, keyword string, id int64) error {
	if err := c.client.Set(ctx, cacheKey(keyword), strconv.FormatInt(id, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write keyword cache: %w", err)
	}
	return nil
}

func cacheKey(keyword string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(keyword))
}

// NoopKeywordCache never hits.
type NoopKeywordCache struct{}

var _ KeywordCache = NoopKeywordCache{}

func (NoopKeywordCache) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }

func (NoopKeywordCache) Set(context.Context, string, int64) error { return nil }
