package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
)

// RedisClient wraps a go-redis universal client with a key prefix
type RedisClient struct {
	mode      RedisMode
	rdb       goredis.UniversalClient
	keyPrefix string
}

// NewClient connects and pings. Single mode uses the first address.
func NewClient(opts Options) (*RedisClient, error) {
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("redis: no address configured")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var rdb goredis.UniversalClient
	switch opts.Mode {
	case ModeSingle, "":
		rdb = goredis.NewClient(&goredis.Options{
			Addr:         opts.Addrs[0],
			Password:     opts.Password,
			DB:           opts.DB,
			PoolSize:     opts.PoolSize,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		})
	case ModeCluster:
		rdb = goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:        opts.Addrs,
			Password:     opts.Password,
			PoolSize:     opts.PoolSize,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported Redis mode: %s", opts.Mode)
	}

	client := &RedisClient{mode: opts.Mode, rdb: rdb, keyPrefix: opts.KeyPrefix}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis (%s): %w", opts.Mode, err)
	}
	return client, nil
}

func (r *RedisClient) buildKey(key string) string {
	return r.keyPrefix + key
}

// Set sets a key-value pair with expiration
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.rdb.Set(ctx, r.buildKey(key), value, expiration).Err()
}

// Get retrieves a value by key, ErrMiss when absent
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.rdb.Get(ctx, r.buildKey(key)).Result()
	if isMiss(err) {
		return "", ErrMiss
	}
	return val, err
}

// SetJSON stores JSON-serialized data with expiration
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return r.Set(ctx, key, data, expiration)
}

// GetJSON retrieves and deserializes JSON data
func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// Delete removes one or more keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	finalKeys := make([]string, len(keys))
	for i, key := range keys {
		finalKeys[i] = r.buildKey(key)
	}
	return r.rdb.Del(ctx, finalKeys...).Err()
}

// Health pings the server
func (r *RedisClient) Health(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.rdb.Close()
}
