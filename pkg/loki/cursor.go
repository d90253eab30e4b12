package loki

import (
	"cmp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// NextCursor derives the cursor for the following page. A page shorter than
// limit is the last one and yields "".
//
// Forward pages anchor on the last record plus 1ns, backward pages on the
// first record minus 1ns. Anchors are positional, so the result is only
// meaningful when records arrive in direction order (see SortRecords).
func NextCursor(records []LogRecord, limit int, direction Direction) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(records) == 0 || len(records) < limit {
		return ""
	}

	if direction == Backward {
		return strconv.FormatInt(ToNanos(records[0].Timestamp)-1, 10)
	}
	return strconv.FormatInt(ToNanos(records[len(records)-1].Timestamp)+1, 10)
}

// SortRecords orders records in place: ascending for forward, descending for
// backward. Equal timestamps fall back to line then label set so the order is
// deterministic across calls.
func SortRecords(records []LogRecord, direction Direction) {
	slices.SortStableFunc(records, func(a, b LogRecord) int {
		c := a.Timestamp.Compare(b.Timestamp)
		if c == 0 {
			c = cmp.Compare(a.Line, b.Line)
		}
		if c == 0 {
			c = cmp.Compare(labelKey(a.Labels), labelKey(b.Labels))
		}
		if direction == Backward {
			return -c
		}
		return c
	})
}

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
		sb.WriteByte(',')
	}
	return sb.String()
}
