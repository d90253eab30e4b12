package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCheck(name string, critical bool, err error) Check {
	return Check{
		Name:     name,
		Critical: critical,
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			return nil, err
		},
	}
}

func TestHealthAggregation(t *testing.T) {
	ctx := context.Background()

	healthy := NewChecker("v1", staticCheck("loki", true, nil), staticCheck("redis", false, nil))
	assert.Equal(t, StatusHealthy, healthy.Health(ctx).Status)

	degraded := NewChecker("v1", staticCheck("loki", true, nil), staticCheck("redis", false, errors.New("down")))
	status := degraded.Health(ctx)
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, "down", status.Services["redis"].Error)
	assert.Equal(t, "v1", status.Version)

	unhealthy := NewChecker("v1", staticCheck("loki", true, errors.New("refused")), staticCheck("redis", false, errors.New("down")))
	assert.Equal(t, StatusUnhealthy, unhealthy.Health(ctx).Status)
}

func TestReadinessUsesCriticalChecksOnly(t *testing.T) {
	c := NewChecker("v1", staticCheck("loki", true, nil), staticCheck("influxdb", false, errors.New("down")))
	status := c.Readiness(context.Background())
	assert.Equal(t, StatusReady, status.Status)
	assert.Len(t, status.Services, 1)

	c = NewChecker("v1", staticCheck("loki", true, errors.New("refused")))
	assert.Equal(t, StatusNotReady, c.Readiness(context.Background()).Status)
}

func TestHealthIsCached(t *testing.T) {
	var calls int32
	c := NewChecker("v1", Check{
		Name:     "loki",
		Critical: true,
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			atomic.AddInt32(&calls, 1)
			return nil, nil
		},
	})

	c.Health(context.Background())
	c.Health(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.ClearCache()
	c.Health(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type fakeProber struct{ err error }

func (f fakeProber) Ready(ctx context.Context) (time.Duration, error) { return 3 * time.Millisecond, f.err }
func (f fakeProber) BaseURL() string                                  { return "http://loki:3100" }

func TestLokiCheck(t *testing.T) {
	c := NewChecker("v1", LokiCheck(fakeProber{}))
	status := c.Health(context.Background())
	require.Contains(t, status.Services, "loki")
	assert.Equal(t, "http://loki:3100", status.Services["loki"].Metadata["url"])
	assert.True(t, status.Services["loki"].Critical)
}
