package loki

import (
	"fmt"
	"strconv"
	"time"
)

// Direction is the scan order Loki uses when a limit cuts the result
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

const (
	// DefaultLimit is sent when a request carries no positive limit
	DefaultLimit = 1000

	defaultLookback = time.Hour
)

// QueryRequest describes one query_range call. It is a value type: options
// and WithCursor produce new values and never mutate the receiver.
type QueryRequest struct {
	Query     string
	Limit     int
	Start     *time.Time
	End       *time.Time
	Direction Direction
	Step      *time.Duration
	Since     *time.Duration
	Until     *time.Duration
	// Cursor is a decimal nanosecond instant, empty when absent
	Cursor string
}

// RequestOption customizes a QueryRequest
type RequestOption func(*QueryRequest)

// NewQueryRequest builds a request for a LogQL expression
func NewQueryRequest(query string, opts ...RequestOption) QueryRequest {
	req := QueryRequest{Query: query}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

func WithLimit(limit int) RequestOption {
	return func(r *QueryRequest) { r.Limit = limit }
}

func WithStart(t time.Time) RequestOption {
	return func(r *QueryRequest) { r.Start = &t }
}

func WithEnd(t time.Time) RequestOption {
	return func(r *QueryRequest) { r.End = &t }
}

// WithRange sets both absolute bounds
func WithRange(start, end time.Time) RequestOption {
	return func(r *QueryRequest) {
		r.Start = &start
		r.End = &end
	}
}

func WithDirection(d Direction) RequestOption {
	return func(r *QueryRequest) { r.Direction = d }
}

func WithStep(step time.Duration) RequestOption {
	return func(r *QueryRequest) { r.Step = &step }
}

// WithSince sets a relative start, now minus since
func WithSince(since time.Duration) RequestOption {
	return func(r *QueryRequest) { r.Since = &since }
}

// WithUntil sets a relative end, now minus until
func WithUntil(until time.Duration) RequestOption {
	return func(r *QueryRequest) { r.Until = &until }
}

// WithCursorToken sets the pagination cursor at construction time
func WithCursorToken(cursor string) RequestOption {
	return func(r *QueryRequest) { r.Cursor = cursor }
}

// WithCursor returns a copy of the request positioned at cursor
func (r QueryRequest) WithCursor(cursor string) QueryRequest {
	r.Cursor = cursor
	return r
}

// EffectiveLimit is the limit actually sent to Loki
func (r QueryRequest) EffectiveLimit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// EffectiveDirection is the direction actually sent to Loki
func (r QueryRequest) EffectiveDirection() Direction {
	if r.Direction == "" {
		return Forward
	}
	return r.Direction
}

// Window resolves the concrete query bounds relative to now.
//
// Start: cursor, absolute start, now-since, now-1h, first match wins.
// End: absolute end, now-until, now.
// A cursor that is not a decimal integer yields ErrInvalidCursor.
func (r QueryRequest) Window(now time.Time) (start, end time.Time, err error) {
	start, err = r.resolveStart(now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, r.resolveEnd(now), nil
}

func (r QueryRequest) resolveStart(now time.Time) (time.Time, error) {
	switch {
	case r.Cursor != "":
		ns, err := strconv.ParseInt(r.Cursor, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidCursor, r.Cursor, err)
		}
		return FromNanos(ns), nil
	case r.Start != nil:
		return *r.Start, nil
	case r.Since != nil:
		return now.Add(-*r.Since), nil
	default:
		return now.Add(-defaultLookback), nil
	}
}

func (r QueryRequest) resolveEnd(now time.Time) time.Time {
	switch {
	case r.End != nil:
		return *r.End
	case r.Until != nil:
		return now.Add(-*r.Until)
	default:
		return now
	}
}
