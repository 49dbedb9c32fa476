package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/pkg/logger"
)

// RedisCache wraps the Redis client with typed operations
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Client returns the underlying Redis client
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.key(key)).Result()
}

// GetJSON retrieves and unmarshals a JSON value from cache
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Set stores a value in cache with optional TTL
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// SetJSON marshals and stores a value in cache
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, string(data), ttl)
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixedKeys := make([]string, len(keys))
	for i, k := range keys {
		prefixedKeys[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixedKeys...).Err()
}

// Exists checks if a key exists
func (c *RedisCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	prefixedKeys := make([]string, len(keys))
	for i, k := range keys {
		prefixedKeys[i] = c.key(k)
	}
	return c.client.Exists(ctx, prefixedKeys...).Result()
}

// Incr increments an integer value
func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, c.key(key)).Result()
}

// LPush prepends values to a list
func (c *RedisCache) LPush(ctx context.Context, key string, values ...any) error {
	return c.client.LPush(ctx, c.key(key), values...).Err()
}

// LRange returns a slice of a list
func (c *RedisCache) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.client.LRange(ctx, c.key(key), start, stop).Result()
}

// LTrim trims a list to the given range
func (c *RedisCache) LTrim(ctx context.Context, key string, start, stop int64) error {
	return c.client.LTrim(ctx, c.key(key), start, stop).Err()
}

// Pipeline returns a Redis pipeline for batch operations
func (c *RedisCache) Pipeline() redis.Pipeliner {
	return c.client.Pipeline()
}

// Cache key constants
const (
	// Detection result cache, keyed by message content hash
	KeyAnalysisPrefix = "cache:analysis:"

	// Completed session archive
	KeySessionArchivePrefix = "archive:session:"
	KeySessionArchiveList   = "archive:sessions"

	// Rate limiting keys
	KeyRateLimitPrefix = "rate_limit:"

	// Engine stats snapshot
	KeyStats = "cache:stats"
)

// archiveListMax bounds the recent-session index
const archiveListMax = 500

// AnalysisKey hashes message text into a stable cache key
func AnalysisKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return KeyAnalysisPrefix + hex.EncodeToString(sum[:16])
}

// CacheAnalysis stores a detection result under the message hash
func (c *RedisCache) CacheAnalysis(ctx context.Context, text string, result any, ttl time.Duration) error {
	return c.SetJSON(ctx, AnalysisKey(text), result, ttl)
}

// GetCachedAnalysis retrieves a cached detection result
func (c *RedisCache) GetCachedAnalysis(ctx context.Context, text string, dest any) error {
	return c.GetJSON(ctx, AnalysisKey(text), dest)
}

// ArchiveSession stores a completed session snapshot and indexes it
func (c *RedisCache) ArchiveSession(ctx context.Context, sessionID string, snapshot any, ttl time.Duration) error {
	if err := c.SetJSON(ctx, KeySessionArchivePrefix+sessionID, snapshot, ttl); err != nil {
		return err
	}
	if err := c.LPush(ctx, KeySessionArchiveList, sessionID); err != nil {
		return err
	}
	return c.LTrim(ctx, KeySessionArchiveList, 0, archiveListMax-1)
}

// GetArchivedSession retrieves an archived session snapshot
func (c *RedisCache) GetArchivedSession(ctx context.Context, sessionID string, dest any) error {
	return c.GetJSON(ctx, KeySessionArchivePrefix+sessionID, dest)
}

// RecentArchivedSessions lists the most recently archived session ids
func (c *RedisCache) RecentArchivedSessions(ctx context.Context, n int64) ([]string, error) {
	return c.LRange(ctx, KeySessionArchiveList, 0, n-1)
}

// CheckRateLimit checks and increments the rate limit counter
// Returns (allowed, remaining, resetTime, error)
func (c *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, key, now.Unix()/int64(window.Seconds()))

	pipe := c.Pipeline()
	incr := pipe.Incr(ctx, c.key(windowKey))
	pipe.Expire(ctx, c.key(windowKey), window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := now.Add(window)

	return count <= limit, remaining, resetTime, nil
}
