package influxdb

import (
	"context"
	"time"
)

// Version selects the InfluxDB flavour
type Version string

const (
	VersionV2OSS  Version = "v2-oss"
	VersionV3Core Version = "v3-core"
)

// Point is a version independent measurement sample
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]interface{}
	Time        time.Time
}

// NewPoint builds a Point
func NewPoint(measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) Point {
	return Point{Measurement: measurement, Tags: tags, Fields: fields, Time: ts}
}

// PointEntity is implemented by entities stored as points
type PointEntity interface {
	ToPoint() Point
	GetName() string
}

// Writer stores points
type Writer interface {
	WritePoint(ctx context.Context, p Point) error
	Health(ctx context.Context) error
	Close()
}

// Config is the resolved connection configuration
type Config struct {
	Version Version

	// v2-oss
	URL    string
	Org    string
	Bucket string
	Token  string

	// v3-core
	Host       string
	Port       int
	AuthScheme string
}

type backend interface {
	Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) error
	Health(ctx context.Context) error
	Close()
}

type writer struct {
	version Version
	backend backend
}

func (w *writer) WritePoint(ctx context.Context, p Point) error {
	return w.backend.Write(ctx, p.Measurement, p.Tags, p.Fields, p.Time)
}

func (w *writer) Health(ctx context.Context) error {
	return w.backend.Health(ctx)
}

func (w *writer) Close() {
	w.backend.Close()
}
