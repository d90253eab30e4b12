package querystats

import (
	"time"

	"github.com/benedict-erwin/lokiquery/pkg/influxdb"
)

const measurement = "loki_query_stats"

// QueryStats is one executed gateway query, stored in InfluxDB by the
// loki:query_stats job
type QueryStats struct {
	Direction string    `json:"direction"`
	Status    string    `json:"status"`     // ok or an error kind
	ErrorKind string    `json:"error_kind"` // empty on success
	Records   int       `json:"records"`
	LatencyMs float64   `json:"latency_ms"`
	Limit     int       `json:"limit"`
	HasNext   bool      `json:"has_next"`
	Cached    bool      `json:"cached"`
	ClientID  string    `json:"client_id"`
	Timestamp time.Time `json:"time"`
}

// ToPoint converts QueryStats to an InfluxDB point
func (s *QueryStats) ToPoint() influxdb.Point {
	return influxdb.NewPoint(
		measurement,
		map[string]string{
			"direction":  safeString(s.Direction),
			"status":     safeString(s.Status),
			"error_kind": safeString(s.ErrorKind),
			"cached":     boolTag(s.Cached),
		},
		map[string]interface{}{
			"records":    s.Records,
			"latency_ms": s.LatencyMs,
			"limit":      s.Limit,
			"has_next":   s.HasNext,
			"client_id":  s.ClientID,
		},
		s.Timestamp,
	)
}

// GetName returns the measurement name
func (s *QueryStats) GetName() string {
	return measurement
}

// safeString keeps tag values non-empty
func safeString(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
