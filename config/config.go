package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	app struct {
		Name     string `json:"name" mapstructure:"name"`
		Env      string `json:"env" mapstructure:"env"`
		Port     int    `json:"port" mapstructure:"port"`
		Timezone string `json:"timezone" mapstructure:"timezone"`
		Version  string `json:"version" mapstructure:"version"`
		LogLevel string `json:"log_level" mapstructure:"log_level"`
		// Tester is attached as the "tester" label on pushed lines
		Tester string `json:"tester" mapstructure:"tester"`
	}

	loki struct {
		URL                string        `json:"url" mapstructure:"url"`
		QueryPath          string        `json:"query_path" mapstructure:"query_path"`
		PushPath           string        `json:"push_path" mapstructure:"push_path"`
		ReadyPath          string        `json:"ready_path" mapstructure:"ready_path"`
		Timeout            time.Duration `json:"timeout" mapstructure:"timeout"`
		TenantID           string        `json:"tenant_id" mapstructure:"tenant_id"`
		Username           string        `json:"username" mapstructure:"username"`
		Password           string        `json:"password" mapstructure:"password"`
		InsecureSkipVerify bool          `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
		DefaultLimit       int           `json:"default_limit" mapstructure:"default_limit"`
		SortResults        bool          `json:"sort_results" mapstructure:"sort_results"`
		GzipPush           bool          `json:"gzip_push" mapstructure:"gzip_push"`
	}

	cache struct {
		Enabled    bool          `json:"enabled" mapstructure:"enabled"`
		MaxEntries int           `json:"max_entries" mapstructure:"max_entries"`
		TTL        time.Duration `json:"ttl" mapstructure:"ttl"`
		// Redis enables the shared second level
		Redis bool `json:"redis" mapstructure:"redis"`
	}

	influxDb struct {
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// "v2-oss" or "v3-core"
		Version string `json:"version,omitempty" mapstructure:"version"`

		// v2-oss
		URL string `json:"url,omitempty" mapstructure:"url"`
		Org string `json:"org,omitempty" mapstructure:"org"`

		Token  string `json:"token" mapstructure:"token"`
		Bucket string `json:"bucket" mapstructure:"bucket"`

		// v3-core
		Host       string `json:"host,omitempty" mapstructure:"host"`
		Port       int    `json:"port,omitempty" mapstructure:"port"`
		AuthScheme string `json:"auth_scheme,omitempty" mapstructure:"auth_scheme"`
	}

	redis struct {
		Mode     string `json:"mode" mapstructure:"mode"` // "single" or "cluster"
		Host     string `json:"host" mapstructure:"host"`
		Port     int    `json:"port" mapstructure:"port"`
		Password string `json:"password" mapstructure:"password"`
		DB       int    `json:"db" mapstructure:"db"`
		Cluster  struct {
			Nodes    []string `json:"nodes" mapstructure:"nodes"`
			Password string   `json:"password" mapstructure:"password"`
		} `json:"cluster" mapstructure:"cluster"`
	}

	asynq struct {
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
		DB          int `json:"db" mapstructure:"db"`
		PoolSize    int `json:"pool_size" mapstructure:"pool_size"`
	}

	auth struct {
		Enabled   bool           `json:"enabled" mapstructure:"enabled"`
		Algorithm string         `json:"algorithm" mapstructure:"algorithm"`
		Issuer    string         `json:"issuer" mapstructure:"issuer"`
		TokenTTL  time.Duration  `json:"token_ttl" mapstructure:"token_ttl"`
		Clients   []ClientConfig `json:"clients" mapstructure:"clients"`
	}

	metrics struct {
		Enabled bool   `json:"enabled" mapstructure:"enabled"`
		Path    string `json:"path" mapstructure:"path"`
	}

	// ClientConfig is one gateway consumer allowed to present a JWT
	ClientConfig struct {
		ClientID    string   `json:"client_id" mapstructure:"client_id"`
		ClientName  string   `json:"client_name" mapstructure:"client_name"`
		SecretKey   string   `json:"secret_key" mapstructure:"secret_key"`
		Permissions []string `json:"permissions" mapstructure:"permissions"`
		Active      bool     `json:"active" mapstructure:"active"`
	}

	Config struct {
		App      app      `json:"app" mapstructure:"app"`
		Loki     loki     `json:"loki" mapstructure:"loki"`
		Cache    cache    `json:"cache" mapstructure:"cache"`
		InfluxDB influxDb `json:"influxdb" mapstructure:"influxdb"`
		Redis    redis    `json:"redis" mapstructure:"redis"`
		Asynq    asynq    `json:"asynq" mapstructure:"asynq"`
		Auth     auth     `json:"auth" mapstructure:"auth"`
		Metrics  metrics  `json:"metrics" mapstructure:"metrics"`
	}

	// RedisConfig is an alias for the internal redis struct for external access
	RedisConfig = redis
	// LokiConfig is an alias for the internal loki struct for external access
	LokiConfig = loki
	// InfluxDBConfig is an alias for the internal influxDb struct for external access
	InfluxDBConfig = influxDb
	// AuthConfig is an alias for the internal auth struct for external access
	AuthConfig = auth
)

const envPrefix = "LOKIQ"

var cfg *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "lokiquery")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("loki.url", "http://localhost:3100")
	v.SetDefault("loki.query_path", "/loki/api/v1/query_range")
	v.SetDefault("loki.push_path", "/loki/api/v1/push")
	v.SetDefault("loki.ready_path", "/ready")
	v.SetDefault("loki.timeout", 30*time.Second)
	v.SetDefault("loki.default_limit", 1000)
	// keys need a default to be visible to AutomaticEnv during Unmarshal
	v.SetDefault("loki.tenant_id", "")
	v.SetDefault("loki.username", "")
	v.SetDefault("loki.password", "")
	v.SetDefault("loki.sort_results", false)
	v.SetDefault("loki.gzip_push", false)
	v.SetDefault("app.tester", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("cache.redis", false)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("influxdb.enabled", false)
	v.SetDefault("influxdb.url", "")
	v.SetDefault("influxdb.token", "")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("influxdb.version", "v2-oss")

	v.SetDefault("redis.mode", "single")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("asynq.concurrency", 10)
	v.SetDefault("asynq.pool_size", 10)

	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.issuer", "lokiquery")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Init loads configuration from .config.json (or path when set) with
// LOKIQ_ environment overrides. A missing file is fine, defaults apply.
func Init(path string) error {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".config")
		v.SetConfigType("json")
		v.AddConfigPath("./")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg = loaded
	return nil
}

// Set replaces the active configuration, used by tests and embedders
func Set(c *Config) {
	cfg = c
}

// Get returns the current configuration instance
func Get() *Config {
	return cfg
}
