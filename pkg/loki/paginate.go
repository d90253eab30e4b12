package loki

import (
	"context"
	"strconv"
)

// Page is one step of a pagination run
type Page struct {
	Number  int
	Request QueryRequest
	Outcome QueryOutcome
}

// PageFunc receives every fetched page. Returning false stops the run.
type PageFunc func(Page) bool

// PaginateResult summarizes a pagination run
type PaginateResult struct {
	Pages   int
	Records int
	// Stalled is set when a full page yielded a cursor that resolves to the
	// window already queried, e.g. more than limit lines in one millisecond
	Stalled bool
	Err     error
}

// Paginate follows NextCursor until it is empty, a page fails, maxPages is
// reached (<= 0 means no cap), ctx is done, fn returns false or the cursor
// stops advancing.
func (c *Client) Paginate(ctx context.Context, req QueryRequest, maxPages int, fn PageFunc) PaginateResult {
	var result PaginateResult
	current := req

	for maxPages <= 0 || result.Pages < maxPages {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return result
		}

		outcome := c.QueryLogs(ctx, current)
		result.Pages++
		result.Records += len(outcome.Records)

		keepGoing := true
		if fn != nil {
			keepGoing = fn(Page{Number: result.Pages, Request: current, Outcome: outcome})
		}
		if outcome.Err != nil {
			result.Err = outcome.Err
			return result
		}
		if !keepGoing || !outcome.HasNext() {
			return result
		}
		if sameStart(current.Cursor, outcome.NextCursor) {
			result.Stalled = true
			return result
		}
		current = current.WithCursor(outcome.NextCursor)
	}
	return result
}

// sameStart reports whether two cursors resolve to the same window start.
// Cursors are sent floored to the millisecond.
func sameStart(prev, next string) bool {
	if prev == "" {
		return false
	}
	a, err := strconv.ParseInt(prev, 10, 64)
	if err != nil {
		return false
	}
	b, err := strconv.ParseInt(next, 10, 64)
	if err != nil {
		return false
	}
	return FromNanos(a).Equal(FromNanos(b))
}
