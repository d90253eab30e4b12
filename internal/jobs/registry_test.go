package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedict-erwin/lokiquery/internal/constants"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
)

type nopPusher struct{}

func (nopPusher) Push(ctx context.Context, streams ...loki.PushStream) error { return nil }

func TestRegisterHandlers(t *testing.T) {
	mux := asynq.NewServeMux()
	jobs, err := RegisterHandlers(mux, Deps{Pusher: nopPusher{}})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	queues := map[string]string{}
	for _, j := range jobs {
		queues[j.TaskType] = j.Queue
	}
	assert.Equal(t, constants.QueueCritical, queues["loki:push"])
	assert.Equal(t, constants.QueueLow, queues["loki:query_stats"])

	h, pattern := mux.Handler(asynq.NewTask("loki:push", nil))
	assert.NotNil(t, h)
	assert.Equal(t, "loki:push", pattern)
}

func TestRegisterHandlersNeedsPusher(t *testing.T) {
	_, err := RegisterHandlers(asynq.NewServeMux(), Deps{})
	assert.Error(t, err)
	assert.Len(t, GetRegisteredJobs(), 2)
}
