package loki

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ResultTypeStreams is the only result type this client flattens
const ResultTypeStreams = "streams"

// QueryResponse is the query_range response body
type QueryResponse struct {
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Data   ResponseData `json:"data"`
}

type ResponseData struct {
	ResultType    string        `json:"resultType"`
	EncodingFlags []string      `json:"encodingFlags,omitempty"`
	Result        []StreamBlock `json:"result"`
	// Stats is passed through untouched
	Stats json.RawMessage `json:"stats,omitempty"`
}

// UnmarshalJSON rejects non-stream results (matrix, vector) instead of
// misreading them as log lines.
func (d *ResponseData) UnmarshalJSON(b []byte) error {
	var raw struct {
		ResultType    string          `json:"resultType"`
		EncodingFlags []string        `json:"encodingFlags"`
		Result        json.RawMessage `json:"result"`
		Stats         json.RawMessage `json:"stats"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.ResultType = raw.ResultType
	d.EncodingFlags = raw.EncodingFlags
	d.Stats = raw.Stats
	d.Result = nil

	if len(raw.Result) == 0 || string(raw.Result) == "null" {
		return nil
	}
	if raw.ResultType != "" && raw.ResultType != ResultTypeStreams {
		return fmt.Errorf("unsupported result type %q", raw.ResultType)
	}
	return json.Unmarshal(raw.Result, &d.Result)
}

// StreamBlock is one label set and its entries
type StreamBlock struct {
	Stream map[string]string `json:"stream"`
	Values []Entry           `json:"values"`
}

// Entry is one log value. On the wire it is a JSON array:
// ["<ns>", "<line>"] or ["<ns>", "<line>", {"structuredMetadata": {...}}].
type Entry struct {
	Nanos    int64
	Line     string
	Metadata map[string]string
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("entry has %d elements, want at least 2", len(raw))
	}

	var ts string
	if err := json.Unmarshal(raw[0], &ts); err != nil {
		return fmt.Errorf("entry timestamp: %w", err)
	}
	ns, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("entry timestamp %q: %w", ts, err)
	}
	if err := json.Unmarshal(raw[1], &e.Line); err != nil {
		return fmt.Errorf("entry line: %w", err)
	}
	e.Nanos = ns
	e.Metadata = nil

	if len(raw) > 2 {
		var extra struct {
			StructuredMetadata map[string]string `json:"structuredMetadata"`
		}
		if err := json.Unmarshal(raw[2], &extra); err != nil {
			return fmt.Errorf("entry metadata: %w", err)
		}
		if len(extra.StructuredMetadata) > 0 {
			e.Metadata = extra.StructuredMetadata
		}
	}
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := []interface{}{strconv.FormatInt(e.Nanos, 10), e.Line}
	if len(e.Metadata) > 0 {
		out = append(out, map[string]interface{}{"structuredMetadata": e.Metadata})
	}
	return json.Marshal(out)
}
