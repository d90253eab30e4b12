package loki

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewClient(srv.URL, opts...)
}

func TestQueryLogsEndToEnd(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultQueryPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		gotQuery = map[string]string{
			"query":     r.URL.Query().Get("query"),
			"limit":     r.URL.Query().Get("limit"),
			"direction": r.URL.Query().Get("direction"),
		}
		_, _ = io.WriteString(w, `{"status":"success","data":{"resultType":"streams","result":[
			{"stream":{"app":"x"},"values":[["1000000000","a"],["2000000000","b"]]}
		]}}`)
	})

	req := NewQueryRequest(`{app="x"}`, WithLimit(2), WithDirection(Forward))
	outcome := client.QueryLogs(context.Background(), req)

	require.NoError(t, outcome.Err)
	assert.Empty(t, outcome.ErrorMessage())
	require.Len(t, outcome.Records, 2)
	assert.Equal(t, int64(1000), outcome.Records[0].Timestamp.UnixMilli())
	assert.Equal(t, "a", outcome.Records[0].Line)
	assert.Equal(t, int64(2000), outcome.Records[1].Timestamp.UnixMilli())
	assert.Equal(t, "b", outcome.Records[1].Line)
	assert.Equal(t, "2000000001", outcome.NextCursor)

	assert.Equal(t, `{app="x"}`, gotQuery["query"])
	assert.Equal(t, "2", gotQuery["limit"])
	assert.Equal(t, "forward", gotQuery["direction"])
}

func TestQueryLogsBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})

	outcome := client.QueryLogs(context.Background(), NewQueryRequest("q"))
	assert.Empty(t, outcome.Records)
	assert.NotNil(t, outcome.Records)
	assert.Empty(t, outcome.NextCursor)
	assert.Equal(t, "Error 500: boom", outcome.ErrorMessage())
	assert.Equal(t, KindBackendError, KindOf(outcome.Err))
}

func TestQueryLogsInvalidCursorSendsNothing(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	outcome := client.QueryLogs(context.Background(), NewQueryRequest("q", WithCursorToken("abc")))
	require.Error(t, outcome.Err)
	assert.True(t, errors.Is(outcome.Err, ErrInvalidCursor))
	assert.Equal(t, KindInvalidCursor, KindOf(outcome.Err))
	assert.Empty(t, outcome.Records)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestQueryLogsParseFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":`)
	})

	outcome := client.QueryLogs(context.Background(), NewQueryRequest("q"))
	assert.Equal(t, KindParseFailure, KindOf(outcome.Err))
	assert.Contains(t, outcome.ErrorMessage(), "failed to parse response")
	assert.Empty(t, outcome.Records)
}

func TestQueryLogsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: time.Second}))
	outcome := client.QueryLogs(context.Background(), NewQueryRequest("q"))
	assert.Equal(t, KindTransportFailure, KindOf(outcome.Err))
	assert.Empty(t, outcome.Records)
	assert.Empty(t, outcome.NextCursor)
}

func TestQueryLogsBodyErrorKeepsRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","error":"partial result","data":{"resultType":"streams","result":[
			{"stream":{"app":"x"},"values":[["1000000","a"]]}
		]}}`)
	})

	outcome := client.QueryLogs(context.Background(), NewQueryRequest("q", WithLimit(1)))
	require.Len(t, outcome.Records, 1)
	assert.Equal(t, "partial result", outcome.ErrorMessage())
	assert.Equal(t, "1000001", outcome.NextCursor)
}

func TestQueryLogsSendsTenantAndAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "team-a", r.Header.Get("X-Scope-OrgID"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)
		_, _ = io.WriteString(w, `{"status":"success","data":{"resultType":"streams","result":[]}}`)
	}, WithTenantID("team-a"), WithBasicAuth("u", "p"))

	outcome := client.QueryLogs(context.Background(), NewQueryRequest("q"))
	assert.NoError(t, outcome.Err)
	assert.Empty(t, outcome.Records)
}

func TestQueryLogsSortedResults(t *testing.T) {
	body := `{"status":"success","data":{"resultType":"streams","result":[
		{"stream":{"app":"a"},"values":[["3000000","late"]]},
		{"stream":{"app":"b"},"values":[["1000000","early"]]}
	]}}`
	handler := func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, body) }

	positional := newTestClient(t, handler).QueryLogs(context.Background(), NewQueryRequest("q", WithLimit(2)))
	assert.Equal(t, "1000001", positional.NextCursor)

	sorted := newTestClient(t, handler, WithSortedResults()).QueryLogs(context.Background(), NewQueryRequest("q", WithLimit(2)))
	assert.Equal(t, "early", sorted.Records[0].Line)
	assert.Equal(t, "3000001", sorted.NextCursor)
}

func TestPaginateFollowsCursor(t *testing.T) {
	var starts []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		starts = append(starts, start)
		switch len(starts) {
		case 1:
			_, _ = io.WriteString(w, `{"data":{"resultType":"streams","result":[{"stream":{},"values":[["1000000","a"],["2000000","b"]]}]}}`)
		default:
			_, _ = io.WriteString(w, `{"data":{"resultType":"streams","result":[{"stream":{},"values":[["3000000","c"]]}]}}`)
		}
	})

	var pages []Page
	result := client.Paginate(context.Background(), NewQueryRequest("q", WithLimit(2)), 10, func(p Page) bool {
		pages = append(pages, p)
		return true
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 3, result.Records)
	require.Len(t, pages, 2)
	assert.Equal(t, "2000001", pages[1].Request.Cursor)
	// the cursor is floored to the millisecond before it is sent
	assert.Equal(t, "2000000", starts[1])
}

func TestPaginateStopsAtMaxPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"resultType":"streams","result":[{"stream":{},"values":[["1000000","a"]]}]}}`)
	})

	result := client.Paginate(context.Background(), NewQueryRequest("q", WithLimit(1)), 3, nil)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 3, result.Records)
}

func TestPaginateStopsWhenCursorStalls(t *testing.T) {
	full := `{"data":{"resultType":"streams","result":[{"stream":{},"values":[["2000000100","a"],["2000000200","b"]]}]}}`
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, full)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := client.Paginate(ctx, NewQueryRequest("q", WithLimit(2)), 0, nil)
	require.NoError(t, result.Err)
	assert.True(t, result.Stalled)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPaginateBackwardStopsWhenCursorStalls(t *testing.T) {
	full := `{"data":{"resultType":"streams","result":[{"stream":{},"values":[["5000000000","new"],["4000000000","old"]]}]}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, full)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := NewQueryRequest("q", WithLimit(2), WithDirection(Backward))
	result := client.Paginate(ctx, req, 0, nil)
	require.NoError(t, result.Err)
	assert.True(t, result.Stalled)
	assert.Equal(t, 2, result.Pages)
}

func TestPaginateStopsOnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := client.Paginate(context.Background(), NewQueryRequest("q"), 0, nil)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, KindBackendError, KindOf(result.Err))
}

func TestPushSendsStreams(t *testing.T) {
	var got pushBody
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultPushPath, r.URL.Path)
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		zr, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.NewDecoder(zr).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}, WithGzipPush())

	at := time.Unix(0, 1_700_000_000_000_000_000)
	stream := NewPushStream(map[string]string{"app": "x"}, at, "one", "two")
	require.NoError(t, client.Push(context.Background(), stream))

	require.Len(t, got.Streams, 1)
	assert.Equal(t, "x", got.Streams[0].Stream["app"])
	assert.Equal(t, [][2]string{
		{"1700000000000000000", "one"},
		{"1700000000000000001", "two"},
	}, got.Streams[0].Values)
}

func TestPushBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "entry out of order")
	})

	err := client.Push(context.Background(), NewPushStream(map[string]string{"app": "x"}, time.Now(), "l"))
	require.Error(t, err)
	assert.Equal(t, "Error 400: entry out of order", err.Error())
}

func TestDefaultLabels(t *testing.T) {
	labels := DefaultLabels("LokiLogger", "alice", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "LokiLogger", labels["app"])
	assert.Equal(t, "alice", labels["tester"])
	assert.Equal(t, "2025", labels["year"])
	assert.Equal(t, "03", labels["month"])
	assert.Equal(t, "09", labels["day"])
	assert.Equal(t, "2025-03-09", labels["date"])
	assert.NotEmpty(t, labels["host"])

	_, ok := DefaultLabels("app", "", time.Now())["tester"]
	assert.False(t, ok)
}

func TestReady(t *testing.T) {
	ready := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultReadyPath, r.URL.Path)
		_, _ = io.WriteString(w, "ready\n")
	})
	_, err := ready.Ready(context.Background())
	assert.NoError(t, err)

	notReady := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "Ingester not ready\n")
	})
	_, err = notReady.Ready(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error 503: Ingester not ready", err.Error())
}
