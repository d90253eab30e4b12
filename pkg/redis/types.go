package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisMode defines the Redis deployment mode
type RedisMode string

const (
	ModeSingle  RedisMode = "single"
	ModeCluster RedisMode = "cluster"
)

// Logical databases for single-node mode. Cluster mode has no database
// selection and separates the same data with key prefixes instead.
const (
	DBMain  = 0 // worker queues
	DBCache = 2 // cached query outcomes
)

const (
	PrefixMain  = "main:"
	PrefixCache = "cache:"
)

// ErrMiss is returned by Get and GetJSON when the key does not exist
var ErrMiss = errors.New("redis: key not found")

// Client is the subset of Redis used by the query cache and health checks
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) error
	Close() error
}

// Options is what NewClient needs to connect in either mode
type Options struct {
	Mode      RedisMode
	Addrs     []string
	Password  string
	DB        int
	KeyPrefix string
	PoolSize  int
	Timeout   time.Duration
}

func isMiss(err error) bool {
	return errors.Is(err, goredis.Nil)
}
