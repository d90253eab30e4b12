package querystats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedict-erwin/lokiquery/internal/entities/querystats"
	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
)

type fakeWriter struct {
	points []influxdb.Point
	err    error
}

func (f *fakeWriter) WritePoint(ctx context.Context, p influxdb.Point) error {
	f.points = append(f.points, p)
	return f.err
}
func (f *fakeWriter) Health(ctx context.Context) error { return nil }
func (f *fakeWriter) Close()                           {}

func TestProcessTaskWritesPoint(t *testing.T) {
	w := &fakeWriter{}
	data, err := json.Marshal(querystats.QueryStats{
		Direction: "backward",
		Status:    "ok",
		Records:   7,
		Timestamp: time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	h := &Handler{Writer: w}
	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(TypeQueryStats, data)))

	require.Len(t, w.points, 1)
	assert.Equal(t, "loki_query_stats", w.points[0].Measurement)
	assert.Equal(t, "backward", w.points[0].Tags["direction"])
	assert.Equal(t, 7, w.points[0].Fields["records"])
}

func TestProcessTaskPropagatesWriteError(t *testing.T) {
	h := &Handler{Writer: &fakeWriter{err: errors.New("influx down")}}
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeQueryStats, []byte(`{"status":"ok"}`)))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestProcessTaskRejectsGarbage(t *testing.T) {
	h := &Handler{Writer: &fakeWriter{}}
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeQueryStats, []byte("nope")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
