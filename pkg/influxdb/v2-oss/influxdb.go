package v2oss

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

// Config represents InfluxDB v2 OSS configuration
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Client writes points to an InfluxDB v2 bucket
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	config   Config
}

// New validates cfg and opens the client
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Bucket == "" || cfg.Org == "" {
		return nil, fmt.Errorf("incomplete InfluxDB v2-oss configuration: url, token, org and bucket are required")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	c := &Client{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		config:   cfg,
	}

	logger.Info().
		Str("url", cfg.URL).
		Str("org", cfg.Org).
		Str("bucket", cfg.Bucket).
		Str("version", "v2-oss").
		Msg("InfluxDB client initialized")
	return c, nil
}

// Write stores a single point
func (c *Client) Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error {
	point := write.NewPoint(measurement, tags, fields, ts)
	if err := c.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to write point to InfluxDB v2-oss: %w", err)
	}
	return nil
}

// Health asks the server for its health status
func (c *Client) Health(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("InfluxDB v2-oss health check failed: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("InfluxDB v2-oss is not healthy: %s", health.Status)
	}
	return nil
}

// Close releases the underlying HTTP resources
func (c *Client) Close() {
	c.client.Close()
}
