package loki

import (
	"strconv"
	"time"
)

const nanosPerMilli = int64(time.Millisecond)

// ToNanos encodes an instant the way Loki parameters expect it: whole
// milliseconds scaled to nanoseconds. Sub-millisecond precision is dropped.
func ToNanos(t time.Time) int64 {
	return t.UnixMilli() * nanosPerMilli
}

// FromNanos converts a nanosecond epoch value to an instant truncated to the
// millisecond. Division floors so negative values stay consistent with ToNanos.
func FromNanos(ns int64) time.Time {
	ms := ns / nanosPerMilli
	if ns%nanosPerMilli < 0 {
		ms--
	}
	return time.UnixMilli(ms).UTC()
}

// FormatNanos renders ToNanos as a decimal string
func FormatNanos(t time.Time) string {
	return strconv.FormatInt(ToNanos(t), 10)
}
