package loki

import (
	"time"
)

// LogRecord is one flattened log line
type LogRecord struct {
	Timestamp time.Time `json:"ts"`
	Line      string    `json:"line"`
	// Labels is shared by every record of the same stream; treat it as read-only
	Labels   map[string]string `json:"labels"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Flatten turns the stream blocks of a response into one record per value,
// streams in response order and values in array order. It never sorts.
func Flatten(resp *QueryResponse) []LogRecord {
	if resp == nil || len(resp.Data.Result) == 0 {
		return []LogRecord{}
	}

	total := 0
	for _, block := range resp.Data.Result {
		total += len(block.Values)
	}

	records := make([]LogRecord, 0, total)
	for _, block := range resp.Data.Result {
		for _, entry := range block.Values {
			records = append(records, LogRecord{
				Timestamp: FromNanos(entry.Nanos),
				Line:      entry.Line,
				Labels:    block.Stream,
				Metadata:  entry.Metadata,
			})
		}
	}
	return records
}
