package v3core

import (
	"context"
	"fmt"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"

	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

// Config represents InfluxDB v3 Core configuration
type Config struct {
	Host       string
	Port       int
	Token      string
	AuthScheme string
	Database   string
}

// Client writes points to an InfluxDB 3 database
type Client struct {
	client *influxdb3.Client
}

// New validates cfg and opens the client
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" || cfg.Token == "" || cfg.Database == "" {
		return nil, fmt.Errorf("incomplete InfluxDB v3-core configuration: host, token and bucket are required")
	}

	host := cfg.Host
	if cfg.Port > 0 {
		host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:       host,
		Token:      cfg.Token,
		Database:   cfg.Database,
		AuthScheme: cfg.AuthScheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize InfluxDB v3-core client: %w", err)
	}

	logger.Info().
		Str("host", host).
		Str("database", cfg.Database).
		Str("version", "v3-core").
		Msg("InfluxDB client initialized")
	return &Client{client: client}, nil
}

// Write stores a single point
func (c *Client) Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error {
	point := influxdb3.NewPoint(measurement, tags, fields, ts)
	if err := c.client.WritePoints(ctx, []*influxdb3.Point{point}); err != nil {
		return fmt.Errorf("failed to write point to InfluxDB v3-core: %w", err)
	}
	return nil
}

// Health runs a trivial SQL query
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.client.Query(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("InfluxDB v3-core health check failed: %w", err)
	}
	return nil
}

// Close releases the client
func (c *Client) Close() {
	if err := c.client.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close InfluxDB v3-core client")
	}
}
