package loki

import (
	"errors"
	"fmt"
)

// ErrInvalidCursor is matched by errors.Is when a cursor does not parse
var ErrInvalidCursor = errors.New("invalid cursor")

// ErrorKind classifies a failed query
type ErrorKind string

const (
	KindInvalidCursor    ErrorKind = "invalid_cursor"
	KindTransportFailure ErrorKind = "transport_failure"
	KindBackendError     ErrorKind = "backend_error"
	KindParseFailure     ErrorKind = "parse_failure"
)

// QueryError is the error carried by QueryOutcome.Err and returned by the
// push and readiness helpers.
type QueryError struct {
	Kind       ErrorKind
	StatusCode int
	// Body is the raw response body for non-2xx replies, or the error field
	// of a 2xx reply
	Body string
	Err  error
}

func (e *QueryError) Error() string {
	switch e.Kind {
	case KindBackendError:
		if e.StatusCode >= 200 && e.StatusCode < 300 {
			return e.Body
		}
		return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Body)
	case KindParseFailure:
		return fmt.Sprintf("failed to parse response: %v", e.Err)
	case KindTransportFailure:
		return fmt.Sprintf("request failed: %v", e.Err)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// KindOf reports the ErrorKind of err, or "" when err is not a QueryError
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}
