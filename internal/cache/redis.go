package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/perchchat/backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// channelMetaTTL bounds staleness of cached channel metadata. Channel
// type and archive flags change rarely; a short TTL keeps invalidation
// simple.
const channelMetaTTL = 5 * time.Minute

// RedisClient wraps the redis.Client with centralized connection pooling
type RedisClient struct {
	client *redis.Client
}

// Singleton instance (package-level)
var globalRedis *RedisClient

// NewRedisClient creates and initializes a Redis client with connection pooling
// Requires REDIS_HOST and optionally REDIS_PORT, REDIS_PASSWORD environment variables
func NewRedisClient(host string, port string, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorWithFields("Failed to connect to Redis", err)
		return nil, err
	}

	rc := &RedisClient{client: client}
	globalRedis = rc

	logger.Log.Info("✅ Redis client connected successfully",
		zap.String("address", addr),
	)

	return rc, nil
}

// GetRedisClient returns the global Redis client instance
func GetRedisClient() *RedisClient {
	return globalRedis
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Get retrieves a value from Redis
func (rc *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// SetEx stores a value in Redis with expiration
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys from Redis
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// Keys returns all keys matching a glob pattern. Used sparingly, for
// cache invalidation only.
func (rc *RedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return rc.client.Keys(ctx, pattern).Result()
}

// GetInt retrieves an integer counter; a missing key reads as 0
func (rc *RedisClient) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := rc.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// IncrBy atomically increments a counter
func (rc *RedisClient) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	return rc.client.IncrBy(ctx, key, value).Result()
}

// Expire sets a key's TTL
func (rc *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return rc.client.Expire(ctx, key, ttl).Err()
}

// ChannelMeta is the cached slice of channel state consulted on every
// guarded read: enough to run the access check and the open-channel
// auto-join without touching the database.
type ChannelMeta struct {
	Type            string `json:"type"`
	IsArchived      bool   `json:"is_archived"`
	IsDirectMessage bool   `json:"is_direct_message"`
	IsSelfMessage   bool   `json:"is_self_message"`
}

func channelMetaKey(channelID string) string {
	return "channel:meta:" + channelID
}

// GetChannelMeta returns cached channel metadata, or (nil, nil) on a
// cache miss.
func (rc *RedisClient) GetChannelMeta(ctx context.Context, channelID string) (*ChannelMeta, error) {
	if rc == nil || rc.client == nil {
		return nil, nil
	}
	raw, err := rc.client.Get(ctx, channelMetaKey(channelID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta ChannelMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SetChannelMeta caches channel metadata with the standard TTL.
func (rc *RedisClient) SetChannelMeta(ctx context.Context, channelID string, meta *ChannelMeta) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, channelMetaKey(channelID), raw, channelMetaTTL).Err()
}

// InvalidateChannelMeta drops the cached metadata for a channel, used
// when a channel is archived or its type changes.
func (rc *RedisClient) InvalidateChannelMeta(ctx context.Context, channelID string) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Del(ctx, channelMetaKey(channelID)).Err()
}
