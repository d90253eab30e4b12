package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/internal/entities/logquery"
	asynqPkg "github.com/benedict-erwin/lokiquery/pkg/asynq"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
)

const TypeLokiPush = "loki:push"

// Handler delivers queued log lines to Loki
type Handler struct {
	Pusher  loki.Pusher
	Metrics *metrics.Metrics
}

// NewPayload wraps a push payload for dispatch on the critical queue
func NewPayload(p logquery.PushPayload) *asynqPkg.Payload {
	return &asynqPkg.Payload{
		TaskType: TypeLokiPush,
		Queue:    constants.QueueCritical,
		Data:     p,
	}
}

// ProcessTask implements asynq.Handler
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := logger.WithScope(TypeLokiPush)

	var payload logquery.PushPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal payload")
		return fmt.Errorf("decode push payload: %v: %w", err, asynq.SkipRetry)
	}

	lines := 0
	for _, s := range payload.Streams {
		lines += len(s.Values)
	}

	if err := h.Pusher.Push(ctx, payload.Streams...); err != nil {
		h.observe("failed")
		if permanent(err) {
			log.Error().Err(err).Int("lines", lines).Msg("Loki rejected push, not retrying")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	h.observe("ok")

	log.Info().
		Str("task_id", taskID(t)).
		Int("streams", len(payload.Streams)).
		Int("lines", lines).
		Msg("Job completed successfully")
	return nil
}

func (h *Handler) observe(status string) {
	if h.Metrics != nil {
		h.Metrics.PushesTotal.WithLabelValues(status).Inc()
	}
}

// permanent reports 4xx rejections other than rate limiting
func permanent(err error) bool {
	var qe *loki.QueryError
	if !errors.As(err, &qe) || qe.Kind != loki.KindBackendError {
		return false
	}
	return qe.StatusCode >= 400 && qe.StatusCode < 500 && qe.StatusCode != http.StatusTooManyRequests
}

func taskID(t *asynq.Task) string {
	if w := t.ResultWriter(); w != nil {
		return w.TaskID()
	}
	return ""
}
