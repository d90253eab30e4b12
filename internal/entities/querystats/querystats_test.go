package querystats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
)

func TestToPoint(t *testing.T) {
	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	stats := &QueryStats{
		Direction: "forward",
		Status:    "ok",
		Records:   42,
		LatencyMs: 12.5,
		Limit:     100,
		Timestamp: at,
	}

	p := stats.ToPoint()
	assert.Equal(t, "loki_query_stats", p.Measurement)
	assert.Equal(t, "-", p.Tags["error_kind"])
	assert.Equal(t, "false", p.Tags["cached"])
	assert.Equal(t, 42, p.Fields["records"])
	assert.Equal(t, 12.5, p.Fields["latency_ms"])
	assert.True(t, at.Equal(p.Time))

	var _ influxdb.PointEntity = stats
	assert.Equal(t, "loki_query_stats", stats.GetName())
}
