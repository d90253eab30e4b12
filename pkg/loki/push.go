package loki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// Pusher delivers log streams to Loki
type Pusher interface {
	Push(ctx context.Context, streams ...PushStream) error
}

// PushStream is one label set and its values in push format
type PushStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type pushBody struct {
	Streams []PushStream `json:"streams"`
}

// NewPushStream stamps lines starting at at, one nanosecond apart, so their
// order survives ingestion.
func NewPushStream(labels map[string]string, at time.Time, lines ...string) PushStream {
	base := at.UnixNano()
	values := make([][2]string, 0, len(lines))
	for i, line := range lines {
		values = append(values, [2]string{strconv.FormatInt(base+int64(i), 10), line})
	}
	return PushStream{Stream: labels, Values: values}
}

// DefaultLabels is the label set attached to lines pushed by this tool
func DefaultLabels(app, tester string, now time.Time) map[string]string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	labels := map[string]string{
		"app":   app,
		"host":  host,
		"year":  now.Format("2006"),
		"month": now.Format("01"),
		"day":   now.Format("02"),
		"date":  now.Format("2006-01-02"),
	}
	if tester != "" {
		labels["tester"] = tester
	}
	return labels
}

// Push sends streams to the push endpoint
func (c *Client) Push(ctx context.Context, streams ...PushStream) error {
	if len(streams) == 0 {
		return nil
	}

	payload, err := json.Marshal(pushBody{Streams: streams})
	if err != nil {
		return fmt.Errorf("encode push body: %w", err)
	}

	var body io.Reader = bytes.NewReader(payload)
	if c.gzipPush {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return fmt.Errorf("compress push body: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress push body: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.pushPath, body)
	if err != nil {
		return &QueryError{Kind: KindTransportFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.gzipPush {
		req.Header.Set("Content-Encoding", "gzip")
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("Loki push failed")
		return &QueryError{Kind: KindTransportFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &QueryError{Kind: KindBackendError, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	lines := 0
	for _, s := range streams {
		lines += len(s.Values)
	}
	c.log.Debug().Int("streams", len(streams)).Int("lines", lines).Msg("Pushed to Loki")
	return nil
}
