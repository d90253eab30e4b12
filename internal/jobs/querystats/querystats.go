package querystats

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/entities/querystats"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

const TypeQueryStats = "loki:query_stats"

// Handler stores query statistics in InfluxDB
type Handler struct {
	// Writer defaults to the process wide InfluxDB writer
	Writer influxdb.Writer
}

// NewPayload wraps stats for dispatch on the low priority queue
func NewPayload(s querystats.QueryStats) *asynqPkg.Payload {
	return &asynqPkg.Payload{
		TaskType: TypeQueryStats,
		Queue:    constants.QueueLow,
		Data:     s,
	}
}

// ProcessTask implements asynq.Handler
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := logger.WithScope(TypeQueryStats)

	var stats querystats.QueryStats
	if err := json.Unmarshal(t.Payload(), &stats); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal payload")
		return fmt.Errorf("decode query stats: %v: %w", err, asynq.SkipRetry)
	}

	writer := h.Writer
	if writer == nil {
		writer = influxdb.Get()
	}
	if writer == nil {
		return fmt.Errorf("InfluxDB client not initialized: %w", asynq.SkipRetry)
	}

	if err := writer.WritePoint(ctx, stats.ToPoint()); err != nil {
		return err
	}

	log.Debug().
		Str("measurements", stats.GetName()).
		Str("status", stats.Status).
		Msg("Job completed successfully")
	return nil
}
