package loki

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

const (
	DefaultQueryPath = "/loki/api/v1/query_range"
	DefaultPushPath  = "/loki/api/v1/push"
	DefaultReadyPath = "/ready"

	rawPreviewBytes = 500
)

// QueryOutcome is the result of one QueryLogs call. Records, NextCursor and
// Err are independent: a 2xx body carrying an error field yields both
// records and Err.
type QueryOutcome struct {
	Records    []LogRecord
	NextCursor string
	Err        error
}

// ErrorMessage returns the error text, or "" when the query succeeded
func (o QueryOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// HasNext reports whether another page can be requested
func (o QueryOutcome) HasNext() bool {
	return o.NextCursor != ""
}

func failed(err error) QueryOutcome {
	return QueryOutcome{Records: []LogRecord{}, Err: err}
}

// Client talks to a single Loki endpoint. It holds immutable configuration
// only and is safe for concurrent use.
type Client struct {
	baseURL     string
	queryPath   string
	pushPath    string
	readyPath   string
	tenantID    string
	username    string
	password    string
	gzipPush    bool
	sortResults bool
	httpClient  *http.Client
	now         func() time.Time
	log         *logger.ScopedLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient supplies the transport. Timeouts and TLS belong there.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithQueryPath(path string) Option {
	return func(c *Client) { c.queryPath = path }
}

func WithPushPath(path string) Option {
	return func(c *Client) { c.pushPath = path }
}

func WithReadyPath(path string) Option {
	return func(c *Client) { c.readyPath = path }
}

// WithTenantID sends X-Scope-OrgID on every request
func WithTenantID(tenant string) Option {
	return func(c *Client) { c.tenantID = tenant }
}

func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithClock replaces time.Now for window resolution
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSortedResults sorts flattened records by direction before the cursor
// is derived
func WithSortedResults() Option {
	return func(c *Client) { c.sortResults = true }
}

// WithGzipPush compresses push bodies
func WithGzipPush() Option {
	return func(c *Client) { c.gzipPush = true }
}

// NewClient creates a client for the Loki instance at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		queryPath:  DefaultQueryPath,
		pushPath:   DefaultPushPath,
		readyPath:  DefaultReadyPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		log:        logger.WithScope("LokiClient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured Loki root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildParams encodes req as query_range parameters against now
func BuildParams(req QueryRequest, now time.Time) (url.Values, error) {
	start, end, err := req.Window(now)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("limit", strconv.Itoa(req.EffectiveLimit()))
	params.Set("start", FormatNanos(start))
	params.Set("end", FormatNanos(end))
	params.Set("direction", string(req.EffectiveDirection()))
	if req.Step != nil {
		params.Set("step", strconv.FormatInt(req.Step.Milliseconds(), 10))
	}
	return params, nil
}

// QueryLogs runs one query_range request. It never retries; every failure
// is reported through the returned outcome.
func (c *Client) QueryLogs(ctx context.Context, req QueryRequest) QueryOutcome {
	log := c.log

	params, err := BuildParams(req, c.now())
	if err != nil {
		log.Warn().Err(err).Msg("Rejected query with invalid cursor")
		return failed(&QueryError{Kind: KindInvalidCursor, Err: err})
	}

	endpoint := c.baseURL + c.queryPath + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failed(&QueryError{Kind: KindTransportFailure, Err: err})
	}
	httpReq.Header.Set("Accept", "application/json")
	c.decorate(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Str("query", req.Query).Msg("Loki request failed")
		return failed(&QueryError{Kind: KindTransportFailure, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(&QueryError{Kind: KindTransportFailure, StatusCode: resp.StatusCode, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("body", preview(body)).Msg("Loki returned an error status")
		return failed(&QueryError{Kind: KindBackendError, StatusCode: resp.StatusCode, Body: string(body)})
	}

	log.Trace().Str("raw", preview(body)).Msg("Raw Loki response")

	var parsed QueryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Error().Err(err).Msg("Failed to parse Loki response")
		return failed(&QueryError{Kind: KindParseFailure, StatusCode: resp.StatusCode, Err: err})
	}

	direction := req.EffectiveDirection()
	records := Flatten(&parsed)
	if c.sortResults {
		SortRecords(records, direction)
	}

	outcome := QueryOutcome{
		Records:    records,
		NextCursor: NextCursor(records, req.EffectiveLimit(), direction),
	}
	if parsed.Error != "" {
		outcome.Err = &QueryError{Kind: KindBackendError, StatusCode: resp.StatusCode, Body: parsed.Error}
	}

	log.Debug().
		Int("records", len(records)).
		Str("next_cursor", outcome.NextCursor).
		Str("direction", string(direction)).
		Msg("Query completed")
	return outcome
}

func (c *Client) decorate(req *http.Request) {
	if c.tenantID != "" {
		req.Header.Set("X-Scope-OrgID", c.tenantID)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

func preview(body []byte) string {
	if len(body) > rawPreviewBytes {
		return string(body[:rawPreviewBytes])
	}
	return string(body)
}
