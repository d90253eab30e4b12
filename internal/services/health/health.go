package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
	"github.com/benedict-erwin/lokiquery/pkg/redis"
	"github.com/benedict-erwin/lokiquery/pkg/system"
	"github.com/benedict-erwin/lokiquery/pkg/utils"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"

	defaultCacheValid = 10 * time.Second
	probeTimeout      = 5 * time.Second
)

type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Services  map[string]ServiceHealth `json:"services"`
	Runtime   system.RuntimeStats      `json:"runtime"`
}

type ServiceHealth struct {
	Status       string                 `json:"status"`
	Critical     bool                   `json:"critical"`
	ResponseTime string                 `json:"response_time"`
	LastCheck    time.Time              `json:"last_check"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

type ReadinessStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services"`
}

// Probe checks one dependency and may return metadata for the report
type Probe func(ctx context.Context) (map[string]interface{}, error)

// Check is a named dependency probe. A failing critical check makes the
// gateway unhealthy and not ready; other failures only degrade it.
type Check struct {
	Name     string
	Critical bool
	Probe    Probe
}

// Checker runs the configured checks and caches the reports briefly
type Checker struct {
	checks     []Check
	version    string
	started    time.Time
	cacheValid time.Duration

	mu             sync.RWMutex
	healthCache    *HealthStatus
	healthTime     time.Time
	readinessCache *ReadinessStatus
	readinessTime  time.Time
}

func NewChecker(version string, checks ...Check) *Checker {
	return &Checker{
		checks:     checks,
		version:    version,
		started:    time.Now(),
		cacheValid: defaultCacheValid,
	}
}

// SetCacheValid overrides how long a report is reused, 0 disables caching
func (c *Checker) SetCacheValid(d time.Duration) {
	c.cacheValid = d
}

// Health runs every check
func (c *Checker) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	if c.healthCache != nil && time.Since(c.healthTime) < c.cacheValid {
		cached := *c.healthCache
		c.mu.RUnlock()
		return &cached
	}
	c.mu.RUnlock()

	services := c.run(ctx, false)
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: utils.Now(),
		Version:   c.version,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Services:  services,
		Runtime:   system.ReadRuntimeStats(),
	}
	for _, s := range services {
		if s.Status == StatusHealthy {
			continue
		}
		if s.Critical {
			status.Status = StatusUnhealthy
			break
		}
		status.Status = StatusDegraded
	}

	c.mu.Lock()
	c.healthCache = status
	c.healthTime = time.Now()
	c.mu.Unlock()
	return status
}

// Readiness runs the critical checks only
func (c *Checker) Readiness(ctx context.Context) *ReadinessStatus {
	c.mu.RLock()
	if c.readinessCache != nil && time.Since(c.readinessTime) < c.cacheValid {
		cached := *c.readinessCache
		c.mu.RUnlock()
		return &cached
	}
	c.mu.RUnlock()

	services := c.run(ctx, true)
	status := &ReadinessStatus{
		Status:    StatusReady,
		Timestamp: utils.Now(),
		Services:  services,
	}
	for _, s := range services {
		if s.Status != StatusHealthy {
			status.Status = StatusNotReady
			break
		}
	}

	c.mu.Lock()
	c.readinessCache = status
	c.readinessTime = time.Now()
	c.mu.Unlock()
	return status
}

// ClearCache drops cached reports
func (c *Checker) ClearCache() {
	c.mu.Lock()
	c.healthCache = nil
	c.readinessCache = nil
	c.mu.Unlock()
}

// run probes concurrently, each under its own timeout
func (c *Checker) run(ctx context.Context, criticalOnly bool) map[string]ServiceHealth {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[string]ServiceHealth, len(c.checks))
	)
	for _, check := range c.checks {
		if criticalOnly && !check.Critical {
			continue
		}
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()
			result := probe(ctx, check)
			mu.Lock()
			out[check.Name] = result
			mu.Unlock()
		}(check)
	}
	wg.Wait()
	return out
}

func probe(ctx context.Context, check Check) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	metadata, err := check.Probe(ctx)
	result := ServiceHealth{
		Status:       StatusHealthy,
		Critical:     check.Critical,
		ResponseTime: time.Since(start).String(),
		LastCheck:    utils.Now(),
		Metadata:     metadata,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// ReadyProber is the part of the Loki client used for health
type ReadyProber interface {
	Ready(ctx context.Context) (time.Duration, error)
	BaseURL() string
}

// LokiCheck probes the Loki readiness endpoint
func LokiCheck(p ReadyProber) Check {
	return Check{
		Name:     "loki",
		Critical: true,
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			elapsed, err := p.Ready(ctx)
			return map[string]interface{}{
				"url":     p.BaseURL(),
				"latency": elapsed.String(),
			}, err
		},
	}
}

// RedisCheck pings the shared cache
func RedisCheck() Check {
	return Check{
		Name: "redis",
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			return nil, redis.Health(ctx)
		},
	}
}

// InfluxDBCheck checks the statistics store
func InfluxDBCheck() Check {
	return Check{
		Name: "influxdb",
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			return nil, influxdb.HealthCheck(ctx)
		},
	}
}

// AsynqCheck reports whether the queue client is up
func AsynqCheck() Check {
	return Check{
		Name: "asynq",
		Probe: func(ctx context.Context) (map[string]interface{}, error) {
			if asynq.GetClient() == nil {
				return nil, fmt.Errorf("asynq client not initialized")
			}
			return nil, nil
		},
	}
}
