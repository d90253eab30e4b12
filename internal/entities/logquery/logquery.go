package logquery

import (
	"fmt"
	"strconv"
	"time"

	"github.com/benedict-erwin/lokiquery/pkg/loki"
)

type (
	// QueryRequest is the gateway query, a JSON body on POST or URL
	// parameters on GET /v1/logs/query. Times accept RFC3339 or decimal
	// nanoseconds, durations use Go syntax ("30m").
	QueryRequest struct {
		Query     string `json:"query" query:"query" validate:"required"`
		Limit     int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=5000"`
		Start     string `json:"start,omitempty" query:"start"`
		End       string `json:"end,omitempty" query:"end"`
		Direction string `json:"direction,omitempty" query:"direction" validate:"omitempty,oneof=forward backward"`
		Step      string `json:"step,omitempty" query:"step"`
		Since     string `json:"since,omitempty" query:"since"`
		Until     string `json:"until,omitempty" query:"until"`
		Cursor    string `json:"cursor,omitempty" query:"cursor"`
	}

	QueryResponse struct {
		Records    []loki.LogRecord `json:"records"`
		NextCursor string           `json:"next_cursor,omitempty"`
		HasNext    bool             `json:"has_next"`
		Error      string           `json:"error,omitempty"`
		ErrorKind  string           `json:"error_kind,omitempty"`
		Cached     bool             `json:"cached"`
	}

	// PushRequest is the gateway body of POST /v1/logs/push
	PushRequest struct {
		Labels    map[string]string `json:"labels"`
		Lines     []string          `json:"lines" validate:"required,min=1,dive,required"`
		Timestamp *time.Time        `json:"timestamp,omitempty"`
	}

	// PushPayload is the loki:push job payload
	PushPayload struct {
		Streams []loki.PushStream `json:"streams"`
	}
)

// ToLokiRequest converts the body into a client request. defaultLimit
// applies when the body carries no limit.
func (r QueryRequest) ToLokiRequest(defaultLimit int) (loki.QueryRequest, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	opts := []loki.RequestOption{loki.WithLimit(limit)}

	if r.Direction != "" {
		opts = append(opts, loki.WithDirection(loki.Direction(r.Direction)))
	}
	if r.Start != "" {
		t, err := ParseInstant(r.Start)
		if err != nil {
			return loki.QueryRequest{}, fmt.Errorf("start: %w", err)
		}
		opts = append(opts, loki.WithStart(t))
	}
	if r.End != "" {
		t, err := ParseInstant(r.End)
		if err != nil {
			return loki.QueryRequest{}, fmt.Errorf("end: %w", err)
		}
		opts = append(opts, loki.WithEnd(t))
	}

	durations := []struct {
		name  string
		value string
		apply func(time.Duration) loki.RequestOption
	}{
		{"step", r.Step, loki.WithStep},
		{"since", r.Since, loki.WithSince},
		{"until", r.Until, loki.WithUntil},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return loki.QueryRequest{}, fmt.Errorf("%s: %w", d.name, err)
		}
		if parsed < 0 {
			return loki.QueryRequest{}, fmt.Errorf("%s: must not be negative", d.name)
		}
		opts = append(opts, d.apply(parsed))
	}

	if r.Cursor != "" {
		opts = append(opts, loki.WithCursorToken(r.Cursor))
	}
	return loki.NewQueryRequest(r.Query, opts...), nil
}

// minNanosDigits rejects epoch seconds (10 digits) and milliseconds (13)
// passed where nanoseconds are expected
const minNanosDigits = 16

// ParseInstant accepts RFC3339 (fractional seconds optional) or a decimal
// nanosecond epoch of at least 16 digits
func ParseInstant(s string) (time.Time, error) {
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		if len(s) < minNanosDigits {
			return time.Time{}, fmt.Errorf("invalid time %q, numeric times are nanoseconds (at least %d digits)", s, minNanosDigits)
		}
		return time.Unix(0, ns).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want RFC3339 or nanoseconds", s)
	}
	return t, nil
}

// FromOutcome shapes a client outcome for the gateway response
func FromOutcome(o loki.QueryOutcome, cached bool) QueryResponse {
	records := o.Records
	if records == nil {
		records = []loki.LogRecord{}
	}
	return QueryResponse{
		Records:    records,
		NextCursor: o.NextCursor,
		HasNext:    o.HasNext(),
		Error:      o.ErrorMessage(),
		ErrorKind:  string(loki.KindOf(o.Err)),
		Cached:     cached,
	}
}

// ToPayload merges default labels under the request labels and stamps the
// lines. Request labels win on conflict.
func (r PushRequest) ToPayload(defaults map[string]string, now time.Time) PushPayload {
	labels := make(map[string]string, len(defaults)+len(r.Labels))
	for k, v := range defaults {
		labels[k] = v
	}
	for k, v := range r.Labels {
		labels[k] = v
	}

	at := now
	if r.Timestamp != nil {
		at = *r.Timestamp
	}
	return PushPayload{Streams: []loki.PushStream{loki.NewPushStream(labels, at, r.Lines...)}}
}
