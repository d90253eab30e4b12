package logs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
	"github.com/benedict-erwin/lokiquery/pkg/redis"
)

const keyPrefix = "loki:page:"

// page is the cacheable part of a successful outcome
type page struct {
	Records    []loki.LogRecord `json:"records"`
	NextCursor string           `json:"next_cursor"`
}

// pageCache is a two level cache of pages for closed time windows. The
// memory level is per process, the optional redis level is shared between
// gateway replicas.
type pageCache struct {
	memory  *expirable.LRU[string, page]
	shared  redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func newPageCache(size int, ttl time.Duration, shared redis.Client, m *metrics.Metrics) *pageCache {
	if size <= 0 {
		size = 256
	}
	return &pageCache{
		memory:  expirable.NewLRU[string, page](size, nil, ttl),
		shared:  shared,
		ttl:     ttl,
		metrics: m,
	}
}

// cacheKey identifies a request by its encoded parameters. Only requests
// with a fixed start (absolute or cursor) whose window ends before now are
// cacheable; an open window keeps receiving lines and a relative start moves
// the key on every call.
func cacheKey(req loki.QueryRequest, now time.Time) (string, bool) {
	if req.End == nil || !req.End.Before(now) {
		return "", false
	}
	if req.Start == nil && req.Cursor == "" {
		return "", false
	}
	params, err := loki.BuildParams(req, now)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256([]byte(params.Encode()))
	return keyPrefix + hex.EncodeToString(sum[:]), true
}

func (c *pageCache) get(ctx context.Context, key string) (page, bool) {
	if p, ok := c.memory.Get(key); ok {
		c.observe("memory", true)
		return p, true
	}
	c.observe("memory", false)

	if c.shared == nil {
		return page{}, false
	}

	var p page
	err := c.shared.GetJSON(ctx, key, &p)
	if err != nil {
		if !errors.Is(err, redis.ErrMiss) {
			log.Warn().Err(err).Str("key", key).Msg("Shared cache lookup failed")
		}
		c.observe("redis", false)
		return page{}, false
	}
	c.observe("redis", true)
	c.memory.Add(key, p)
	return p, true
}

func (c *pageCache) put(ctx context.Context, key string, p page) {
	c.memory.Add(key, p)
	if c.shared == nil {
		return
	}
	if err := c.shared.SetJSON(ctx, key, p, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Shared cache store failed")
	}
}

func (c *pageCache) observe(level string, hit bool) {
	if c.metrics != nil {
		c.metrics.ObserveCache(level, hit)
	}
}
