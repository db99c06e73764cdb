package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/voxdial/internal/domain"
	"github.com/seu-repo/voxdial/internal/ports"
)

const audioKeyPrefix = "voxdial:audio:"

// RedisAudioCache stores synthesized audio in Redis, leaning on Redis'
// native key expiry for the TTL eviction. Preferred in multi-instance
// deployments where the provider's audio fetch may land on a different
// instance than the webhook that synthesized it.
type RedisAudioCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisAudioCache connects to Redis and verifies the connection.
func NewRedisAudioCache(url string, ttl time.Duration, log *zap.Logger) (*RedisAudioCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	log.Info("Redis audio cache initialized", zap.Duration("ttl", ttl))
	return &RedisAudioCache{client: client, ttl: ttl, log: log}, nil
}

var _ ports.AudioCache = (*RedisAudioCache)(nil)

func (c *RedisAudioCache) Put(ctx context.Context, id string, data []byte) error {
	return c.client.Set(ctx, audioKeyPrefix+id, data, c.ttl).Err()
}

func (c *RedisAudioCache) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := c.client.Get(ctx, audioKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes the entry; Redis DEL on a missing key is already a no-op.
func (c *RedisAudioCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, audioKeyPrefix+id).Err()
}

func (c *RedisAudioCache) Ping() error {
	return c.client.Ping(context.Background()).Err()
}

func (c *RedisAudioCache) Close() error {
	return c.client.Close()
}
