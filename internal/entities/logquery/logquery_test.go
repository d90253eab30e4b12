package logquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedict-erwin/lokiquery/pkg/loki"
)

func TestToLokiRequest(t *testing.T) {
	body := QueryRequest{
		Query:     `{app="x"}`,
		Start:     "2025-07-01T10:00:00Z",
		End:       "1751367600000000000",
		Direction: "backward",
		Step:      "30s",
		Cursor:    "123",
	}

	req, err := body.ToLokiRequest(500)
	require.NoError(t, err)
	assert.Equal(t, `{app="x"}`, req.Query)
	assert.Equal(t, 500, req.Limit)
	assert.Equal(t, loki.Backward, req.Direction)
	require.NotNil(t, req.Start)
	assert.True(t, req.Start.Equal(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)))
	require.NotNil(t, req.End)
	assert.Equal(t, int64(1751367600000), req.End.UnixMilli())
	require.NotNil(t, req.Step)
	assert.Equal(t, 30*time.Second, *req.Step)
	assert.Equal(t, "123", req.Cursor)
	assert.Nil(t, req.Since)
}

func TestToLokiRequestRelative(t *testing.T) {
	req, err := QueryRequest{Query: "q", Limit: 20, Since: "30m", Until: "5m"}.ToLokiRequest(1000)
	require.NoError(t, err)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, 30*time.Minute, *req.Since)
	assert.Equal(t, 5*time.Minute, *req.Until)
}

func TestToLokiRequestRejectsBadInput(t *testing.T) {
	cases := []QueryRequest{
		{Query: "q", Start: "yesterday"},
		{Query: "q", Since: "half an hour"},
		{Query: "q", Until: "-5m"},
		{Query: "q", Start: "2025"},
		{Query: "q", End: "1751367600"},
		{Query: "q", End: "1751367600000"},
	}
	for _, c := range cases {
		_, err := c.ToLokiRequest(1000)
		assert.Error(t, err)
	}
}

func TestFromOutcome(t *testing.T) {
	resp := FromOutcome(loki.QueryOutcome{Err: &loki.QueryError{Kind: loki.KindBackendError, StatusCode: 500, Body: "boom"}}, false)
	assert.NotNil(t, resp.Records)
	assert.Equal(t, "Error 500: boom", resp.Error)
	assert.Equal(t, "backend_error", resp.ErrorKind)
	assert.False(t, resp.HasNext)

	resp = FromOutcome(loki.QueryOutcome{Records: []loki.LogRecord{{Line: "a"}}, NextCursor: "5"}, true)
	assert.True(t, resp.HasNext)
	assert.True(t, resp.Cached)
	assert.Empty(t, resp.ErrorKind)
}

func TestPushToPayload(t *testing.T) {
	now := time.Unix(0, 1_000)
	payload := PushRequest{
		Labels: map[string]string{"app": "override", "env": "test"},
		Lines:  []string{"one", "two"},
	}.ToPayload(map[string]string{"app": "lokiquery", "host": "h"}, now)

	require.Len(t, payload.Streams, 1)
	s := payload.Streams[0]
	assert.Equal(t, map[string]string{"app": "override", "env": "test", "host": "h"}, s.Stream)
	assert.Equal(t, [][2]string{{"1000", "one"}, {"1001", "two"}}, s.Values)
}

func TestParseInstant(t *testing.T) {
	at, err := ParseInstant("1751367600000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1751367600), at.Unix())

	at, err = ParseInstant("2025-07-01T10:00:00.5Z")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, time.Duration(at.Nanosecond()))

	_, err = ParseInstant("2025")
	assert.ErrorContains(t, err, "nanoseconds")
}
