package influxdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benedict-erwin/lokiquery/config"
)

func TestResolveConfigExplicitVersion(t *testing.T) {
	got := ResolveConfig(config.InfluxDBConfig{
		Version: "v3-core",
		Host:    "http://influx",
		Port:    8181,
		Token:   "tok",
		Bucket:  "loki_stats",
	})
	assert.Equal(t, VersionV3Core, got.Version)
	assert.Equal(t, "http://influx", got.Host)
	assert.Equal(t, 8181, got.Port)
	assert.Equal(t, "loki_stats", got.Bucket)
	assert.Empty(t, got.URL)
}

func TestResolveConfigAutoDetect(t *testing.T) {
	v3 := ResolveConfig(config.InfluxDBConfig{Host: "http://influx", AuthScheme: "Bearer"})
	assert.Equal(t, VersionV3Core, v3.Version)

	v2 := ResolveConfig(config.InfluxDBConfig{URL: "http://influx:8086"})
	assert.Equal(t, VersionV2OSS, v2.Version)
	assert.Equal(t, "lokiquery", v2.Org)
}

func TestResolveConfigBuildsV2URLFromHost(t *testing.T) {
	got := ResolveConfig(config.InfluxDBConfig{Version: "bogus", Host: "influx", Port: 8086})
	assert.Equal(t, VersionV2OSS, got.Version)
	assert.Equal(t, "http://influx:8086", got.URL)
}

func TestNewWriterRejectsIncompleteConfig(t *testing.T) {
	_, err := NewWriter(Config{Version: VersionV2OSS, URL: "http://influx:8086"})
	assert.Error(t, err)

	_, err = NewWriter(Config{Version: VersionV3Core, Host: "http://influx"})
	assert.Error(t, err)
}
