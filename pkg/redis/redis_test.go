package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benedict-erwin/lokiquery/config"
)

func TestBuildOptionsSingle(t *testing.T) {
	var cfg config.RedisConfig
	cfg.Mode = "single"
	cfg.Host = "cache.local"
	cfg.Port = 6380
	cfg.Password = "pw"

	opts, err := BuildOptions(cfg, DBCache, PrefixCache)
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, opts.Mode)
	assert.Equal(t, []string{"cache.local:6380"}, opts.Addrs)
	assert.Equal(t, DBCache, opts.DB)
	assert.Empty(t, opts.KeyPrefix)
}

func TestBuildOptionsCluster(t *testing.T) {
	var cfg config.RedisConfig
	cfg.Mode = "cluster"
	cfg.Cluster.Nodes = []string{"n1:7000", "n2:7000"}

	opts, err := BuildOptions(cfg, DBCache, PrefixCache)
	require.NoError(t, err)
	assert.Equal(t, ModeCluster, opts.Mode)
	assert.Equal(t, PrefixCache, opts.KeyPrefix)
	assert.Zero(t, opts.DB)
}

func TestBuildOptionsRejectsBadConfig(t *testing.T) {
	var cfg config.RedisConfig
	cfg.Mode = "single"
	_, err := BuildOptions(cfg, DBMain, PrefixMain)
	assert.Error(t, err)

	cfg.Mode = "sentinel"
	_, err = BuildOptions(cfg, DBMain, PrefixMain)
	assert.Error(t, err)

	cfg.Mode = "cluster"
	cfg.Cluster.Nodes = []string{""}
	_, err = BuildOptions(cfg, DBMain, PrefixMain)
	assert.Error(t, err)
}
