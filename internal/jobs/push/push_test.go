package push

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedict-erwin/lokiquery/internal/entities/logquery"
	"github.com/benedict-erwin/lokiquery/pkg/loki"
	"github.com/benedict-erwin/lokiquery/pkg/metrics"
)

type fakePusher struct {
	got []loki.PushStream
	err error
}

func (f *fakePusher) Push(ctx context.Context, streams ...loki.PushStream) error {
	f.got = append(f.got, streams...)
	return f.err
}

func newTask(t *testing.T, p logquery.PushPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(TypeLokiPush, data)
}

func TestProcessTaskDelivers(t *testing.T) {
	pusher := &fakePusher{}
	m := metrics.New(prometheus.NewRegistry())
	h := &Handler{Pusher: pusher, Metrics: m}

	payload := logquery.PushPayload{Streams: []loki.PushStream{
		{Stream: map[string]string{"app": "x"}, Values: [][2]string{{"1", "a"}, {"2", "b"}}},
	}}
	require.NoError(t, h.ProcessTask(context.Background(), newTask(t, payload)))

	require.Len(t, pusher.got, 1)
	assert.Equal(t, "x", pusher.got[0].Stream["app"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PushesTotal.WithLabelValues("ok")))
}

func TestProcessTaskSkipsRetryOnRejection(t *testing.T) {
	h := &Handler{Pusher: &fakePusher{err: &loki.QueryError{Kind: loki.KindBackendError, StatusCode: 400, Body: "bad labels"}}}

	err := h.ProcessTask(context.Background(), newTask(t, logquery.PushPayload{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestProcessTaskRetriesTransientFailures(t *testing.T) {
	cases := []error{
		&loki.QueryError{Kind: loki.KindBackendError, StatusCode: 429},
		&loki.QueryError{Kind: loki.KindBackendError, StatusCode: 503},
		&loki.QueryError{Kind: loki.KindTransportFailure, Err: errors.New("connection refused")},
	}
	for _, c := range cases {
		h := &Handler{Pusher: &fakePusher{err: c}}
		err := h.ProcessTask(context.Background(), newTask(t, logquery.PushPayload{}))
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry), c.Error())
	}
}

func TestProcessTaskBadPayload(t *testing.T) {
	h := &Handler{Pusher: &fakePusher{}}
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeLokiPush, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
