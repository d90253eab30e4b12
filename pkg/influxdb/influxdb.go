package influxdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/benedict-erwin/lokiquery/config"
	v2oss "github.com/benedict-erwin/lokiquery/pkg/influxdb/v2-oss"
	v3core "github.com/benedict-erwin/lokiquery/pkg/influxdb/v3-core"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var (
	current Writer
	mu      sync.RWMutex
)

// ResolveConfig picks the version and fills version specific fields.
// Without an explicit version, url/org select v2-oss and host/auth_scheme
// select v3-core.
func ResolveConfig(cfg config.InfluxDBConfig) Config {
	out := Config{Token: cfg.Token, Bucket: cfg.Bucket}

	switch Version(cfg.Version) {
	case VersionV2OSS, VersionV3Core:
		out.Version = Version(cfg.Version)
	case "":
		if cfg.URL == "" && cfg.Org == "" && cfg.Host != "" && cfg.AuthScheme != "" {
			out.Version = VersionV3Core
		} else {
			out.Version = VersionV2OSS
		}
	default:
		logger.Warn().Str("version", cfg.Version).Msg("Unknown InfluxDB version, defaulting to v2-oss")
		out.Version = VersionV2OSS
	}

	switch out.Version {
	case VersionV2OSS:
		out.URL = cfg.URL
		if out.URL == "" && cfg.Host != "" {
			out.URL = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		}
		out.Org = cfg.Org
		if out.Org == "" {
			out.Org = "lokiquery"
		}
	case VersionV3Core:
		out.Host = cfg.Host
		out.Port = cfg.Port
		out.AuthScheme = cfg.AuthScheme
	}
	return out
}

// NewWriter opens a writer for the resolved configuration
func NewWriter(cfg Config) (Writer, error) {
	switch cfg.Version {
	case VersionV3Core:
		c, err := v3core.New(v3core.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Token:      cfg.Token,
			AuthScheme: cfg.AuthScheme,
			Database:   cfg.Bucket,
		})
		if err != nil {
			return nil, err
		}
		return &writer{version: cfg.Version, backend: c}, nil
	default:
		c, err := v2oss.New(v2oss.Config{URL: cfg.URL, Token: cfg.Token, Org: cfg.Org, Bucket: cfg.Bucket})
		if err != nil {
			return nil, err
		}
		return &writer{version: VersionV2OSS, backend: c}, nil
	}
}

// Init opens the process wide writer from application config
func Init() error {
	resolved := ResolveConfig(config.Get().InfluxDB)
	logger.Info().Str("version", string(resolved.Version)).Msg("Initializing InfluxDB client")

	w, err := NewWriter(resolved)
	if err != nil {
		return err
	}

	mu.Lock()
	current = w
	mu.Unlock()
	return nil
}

// Get returns the process wide writer, nil before Init
func Get() Writer {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WritePoint writes through the process wide writer
func WritePoint(ctx context.Context, p Point) error {
	w := Get()
	if w == nil {
		return fmt.Errorf("InfluxDB client not initialized")
	}
	return w.WritePoint(ctx, p)
}

// HealthCheck performs a connectivity test
func HealthCheck(ctx context.Context) error {
	w := Get()
	if w == nil {
		return fmt.Errorf("InfluxDB client not initialized")
	}
	return w.Health(ctx)
}

// Close closes the process wide writer
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		current.Close()
		current = nil
		logger.Info().Msg("InfluxDB client closed")
	}
}
