package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/benedict-erwin/lokiquery/internal/entities/logquery"
	"github.com/benedict-erwin/lokiquery/internal/entities/querystats"
	pushJob "github.com/benedict-erwin/lokiquery/internal/jobs/push"
	statsJob "github.com/benedict-erwin/lokiquery/internal/jobs/querystats"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
	"github.com/benedict-erwin/lokiquery/pkg/redis"
)

var log = logger.WithScope("LogsService")

// Querier runs a single query_range request
type Querier interface {
	QueryLogs(ctx context.Context, req loki.QueryRequest) loki.QueryOutcome
}

// Backend is everything the service needs from Loki
type Backend interface {
	Querier
	loki.Pusher
}

// Options configures a Service. Zero values disable the optional parts.
type Options struct {
	DefaultLimit int
	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration
	SharedCache  redis.Client
	Metrics      *metrics.Metrics
	// Dispatcher receives query statistics and asynchronous pushes
	Dispatcher asynqPkg.Dispatcher
	App        string
	Tester     string
	Now        func() time.Time
}

// Service is the gateway logic on top of the Loki client
type Service struct {
	backend Backend
	cache   *pageCache
	opts    Options
}

// Result is one gateway query
type Result struct {
	Outcome loki.QueryOutcome
	Cached  bool
}

func NewService(backend Backend, opts Options) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = loki.DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{backend: backend, opts: opts}
	if opts.CacheEnabled {
		s.cache = newPageCache(opts.CacheSize, opts.CacheTTL, opts.SharedCache, opts.Metrics)
	}
	return s
}

// DefaultLimit is applied to bodies without a limit
func (s *Service) DefaultLimit() int {
	return s.opts.DefaultLimit
}

// Query runs req, serving closed windows from cache when possible
func (s *Service) Query(ctx context.Context, req loki.QueryRequest, clientID string) Result {
	now := s.opts.Now()

	key, cacheable := "", false
	if s.cache != nil {
		key, cacheable = cacheKey(req, now)
	}
	if cacheable {
		if p, ok := s.cache.get(ctx, key); ok {
			outcome := loki.QueryOutcome{Records: p.Records, NextCursor: p.NextCursor}
			s.report(req, outcome, 0, true, clientID, now)
			return Result{Outcome: outcome, Cached: true}
		}
	}

	started := time.Now()
	outcome := s.backend.QueryLogs(ctx, req)
	elapsed := time.Since(started)

	if cacheable && outcome.Err == nil {
		s.cache.put(ctx, key, page{Records: outcome.Records, NextCursor: outcome.NextCursor})
	}

	s.report(req, outcome, elapsed, false, clientID, now)
	return Result{Outcome: outcome}
}

func (s *Service) report(req loki.QueryRequest, o loki.QueryOutcome, elapsed time.Duration, cached bool, clientID string, now time.Time) {
	direction := string(req.EffectiveDirection())
	status := "ok"
	if o.Err != nil {
		status = string(loki.KindOf(o.Err))
	}

	if s.opts.Metrics != nil && !cached {
		s.opts.Metrics.ObserveQuery(direction, status, elapsed, len(o.Records))
	}

	if s.opts.Dispatcher == nil {
		return
	}
	stats := querystats.QueryStats{
		Direction: direction,
		Status:    status,
		Records:   len(o.Records),
		LatencyMs: float64(elapsed.Microseconds()) / 1000,
		Limit:     req.EffectiveLimit(),
		HasNext:   o.HasNext(),
		Cached:    cached,
		ClientID:  clientID,
		Timestamp: now,
	}
	if o.Err != nil {
		stats.ErrorKind = status
	}
	if err := s.opts.Dispatcher.Dispatch(statsJob.NewPayload(stats)); err != nil {
		log.Warn().Err(err).Msg("Failed to dispatch query stats")
	}
}

// Push delivers lines with the default labels merged under the request
// labels. When async is set the lines are queued for the worker instead.
func (s *Service) Push(ctx context.Context, req logquery.PushRequest, async bool) (int, error) {
	now := s.opts.Now()
	payload := req.ToPayload(loki.DefaultLabels(s.opts.App, s.opts.Tester, now), now)

	lines := 0
	for _, st := range payload.Streams {
		lines += len(st.Values)
	}

	if async {
		if s.opts.Dispatcher == nil {
			return 0, fmt.Errorf("queue client not available")
		}
		if err := s.opts.Dispatcher.Dispatch(pushJob.NewPayload(payload)); err != nil {
			return 0, err
		}
		log.Debug().Int("lines", lines).Msg("Push queued")
		return lines, nil
	}

	if err := s.backend.Push(ctx, payload.Streams...); err != nil {
		s.observePush("failed")
		return 0, err
	}
	s.observePush("ok")
	return lines, nil
}

func (s *Service) observePush(status string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.PushesTotal.WithLabelValues(status).Inc()
	}
}
