package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// Redis key TTLs. Results use a short hot-cache TTL in front of the
// Postgres store; resolved identities barely change and are kept longer.
const (
	ResultCacheTTL   = 15 * time.Minute
	IdentityCacheTTL = 7 * 24 * time.Hour
)

// CacheService is a Redis cache-aside layer for scored results plus the
// injected identity cache consumed by the aggregator. A nil client turns
// every operation into a no-op.
type CacheService struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewCacheService connects to Redis. If redisURL is empty or the
// connection fails, caching is disabled rather than fatal.
func NewCacheService(redisURL string, logger zerolog.Logger) *CacheService {
	if redisURL == "" {
		logger.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{logger: logger}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{logger: logger}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{logger: logger}
	}

	logger.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, logger: logger}
}

// Client returns the underlying Redis client for health checks. May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetResult retrieves a cached result. Returns nil when absent or caching
// is disabled.
func (c *CacheService) GetResult(ctx context.Context, channelID string) *model.InfluenceResult {
	if c.rdb == nil {
		return nil
	}
	data, err := c.rdb.Get(ctx, resultKey(channelID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("redis: result get error")
		}
		return nil
	}

	var result model.InfluenceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// SetResult stores a result in the hot cache.
func (c *CacheService) SetResult(ctx context.Context, result *model.InfluenceResult) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, resultKey(result.ChannelID), data, ResultCacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis: result set error")
	}
}

// InvalidateResult drops a result from the hot cache (after a refresh).
func (c *CacheService) InvalidateResult(ctx context.Context, channelID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, resultKey(channelID)).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis: result invalidate error")
	}
}

// GetChannelID implements aggregate.IdentityCache.
func (c *CacheService) GetChannelID(ctx context.Context, identifier string) (string, bool) {
	if c.rdb == nil {
		return "", false
	}
	id, err := c.rdb.Get(ctx, identityKey(identifier)).Result()
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// SetChannelID implements aggregate.IdentityCache.
func (c *CacheService) SetChannelID(ctx context.Context, identifier, channelID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, identityKey(identifier), channelID, IdentityCacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis: identity set error")
	}
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func resultKey(channelID string) string {
	return "influence:" + channelID
}

func identityKey(identifier string) string {
	return "identity:" + identifier
}
