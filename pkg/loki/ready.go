package loki

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ready probes the readiness endpoint and reports how long it took to answer
func (c *Client) Ready(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.readyPath, nil)
	if err != nil {
		return 0, &QueryError{Kind: KindTransportFailure, Err: err}
	}
	c.decorate(req)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Since(started), &QueryError{Kind: KindTransportFailure, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	elapsed := time.Since(started)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return elapsed, &QueryError{
			Kind:       KindBackendError,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return elapsed, nil
}
