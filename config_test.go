package hbkit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hbase.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver = "memory"
quorum = ["zk1", "zk2"]
port = 2181
user = "cloudera"
timeout = "3s"
scan-caching = 16
recreate-policy = "create-if-absent"

[headers]
Authorization = "Basic abc"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Driver)
	assert.Equal(t, []string{"zk1:2181", "zk2:2181"}, cfg.Addrs())
	assert.Equal(t, 3*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, 16, cfg.scanCaching())
	assert.Equal(t, "Basic abc", cfg.Headers["Authorization"])
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://zk1:2181/", cfg.GatewayURL())
	assert.NoError(t, cfg.Validate())
	p, err := ParseRecreatePolicy(cfg.RecreatePolicy)
	require.NoError(t, err)
	assert.Equal(t, CreateIfAbsent, p)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`timeout = "soon"`), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"no address", func(c *Config) { c.Quorum = nil }, false},
		{"gateway only", func(c *Config) { c.Quorum = nil; c.Gateway = "http://gw:9090/" }, true},
		{"empty host", func(c *Config) { c.Quorum = []string{""} }, false},
		{"bad port", func(c *Config) { c.Port = 0 }, false},
		{"negative caching", func(c *Config) { c.ScanCaching = -1 }, false},
		{"empty policy", func(c *Config) { c.RecreatePolicy = "" }, true},
		{"unknown policy", func(c *Config) { c.RecreatePolicy = "sometimes" }, false},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mutate(cfg)
		err := cfg.Validate()
		if c.ok {
			assert.NoError(t, err, c.name)
		} else {
			assert.Error(t, err, c.name)
		}
	}
	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestNormalizeScan(t *testing.T) {
	s := normalizeScan(&ScanSpec{Prefix: []byte("ab"), Limit: 5}, BatchResultSize)
	assert.Equal(t, []byte("ab"), s.StartRow)
	assert.Equal(t, []byte("ac"), s.StopRow)
	assert.Nil(t, s.Prefix)
	assert.Equal(t, 5, s.Caching)

	s = normalizeScan(nil, 8)
	assert.Equal(t, 8, s.Caching)
}
