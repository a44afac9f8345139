package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// JobState is the cached snapshot the poll endpoint reads before falling
// back to the database.
type JobState struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	SetJobState(ctx context.Context, jobID uuid.UUID, state JobState, ttl time.Duration) error
	GetJobState(ctx context.Context, jobID uuid.UUID) (JobState, bool, error)
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) SetJobState(ctx context.Context, jobID uuid.UUID, state JobState, ttl time.Duration) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, JobStateKey(jobID), b, ttl).Err()
}

func (c *RedisCache) GetJobState(ctx context.Context, jobID uuid.UUID) (JobState, bool, error) {
	val, err := c.client.Get(ctx, JobStateKey(jobID)).Bytes()
	if err == redis.Nil {
		return JobState{}, false, nil
	}
	if err != nil {
		return JobState{}, false, err
	}
	var state JobState
	if err := json.Unmarshal(val, &state); err != nil {
		return JobState{}, false, err
	}
	return state, true, nil
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
