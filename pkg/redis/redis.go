package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var (
	cacheClient Client
	mu          sync.RWMutex
)

// BuildOptions derives connection options for a logical store from config
func BuildOptions(cfg config.RedisConfig, db int, prefix string) (Options, error) {
	if err := validateConfig(cfg); err != nil {
		return Options{}, fmt.Errorf("invalid Redis configuration: %w", err)
	}

	mode := RedisMode(cfg.Mode)
	if mode == "" {
		mode = ModeSingle
	}

	opts := Options{Mode: mode, PoolSize: 10}
	switch mode {
	case ModeSingle:
		opts.Addrs = []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)}
		opts.Password = cfg.Password
		opts.DB = db
	case ModeCluster:
		opts.Addrs = cfg.Cluster.Nodes
		opts.Password = cfg.Cluster.Password
		opts.KeyPrefix = prefix
	}
	return opts, nil
}

// InitCache connects the client used as the shared query cache
func InitCache() error {
	cfg := config.Get().Redis

	opts, err := BuildOptions(cfg, DBCache, PrefixCache)
	if err != nil {
		return err
	}

	client, err := NewClient(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize cache Redis client: %w", err)
	}

	mu.Lock()
	cacheClient = client
	mu.Unlock()

	logger.Info().
		Str("mode", string(opts.Mode)).
		Strs("addrs", opts.Addrs).
		Int("db", opts.DB).
		Msg("Cache Redis client initialized")
	return nil
}

// GetCache returns the cache client, nil when InitCache was not called
func GetCache() Client {
	mu.RLock()
	defer mu.RUnlock()
	return cacheClient
}

// Health checks the cache connection
func Health(ctx context.Context) error {
	client := GetCache()
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return client.Health(ctx)
}

// Close closes the cache connection
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if cacheClient != nil {
		err := cacheClient.Close()
		cacheClient = nil
		return err
	}
	return nil
}

func validateConfig(cfg config.RedisConfig) error {
	switch RedisMode(cfg.Mode) {
	case ModeSingle, "":
		if cfg.Host == "" {
			return fmt.Errorf("redis host not specified for single-node mode")
		}
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return fmt.Errorf("invalid Redis port: %d", cfg.Port)
		}
	case ModeCluster:
		if len(cfg.Cluster.Nodes) == 0 {
			return fmt.Errorf("redis cluster nodes not specified")
		}
		for _, node := range cfg.Cluster.Nodes {
			if node == "" {
				return fmt.Errorf("empty Redis cluster node")
			}
		}
	default:
		return fmt.Errorf("unsupported Redis mode: %s", cfg.Mode)
	}
	return nil
}
