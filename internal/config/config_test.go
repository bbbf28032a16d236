package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[server]
addr = "127.0.0.1:9000"
read_timeout = "5s"
max_upload_bytes = 2048

[store]
backend = "postgres"
dsn = "postgres://molview@localhost/molview"

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2

[render]
bond_colour = "#336699"
no_gradients = true

[log]
level = "debug"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.EqualValues(t, 2048, cfg.Server.MaxUploadBytes)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.Equal(t, "#336699", cfg.Render.BondColour)
	assert.True(t, cfg.Render.NoGradients)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv("MOLVIEW_SERVER_ADDR", ":7000")
	t.Setenv("MOLVIEW_CACHE_BACKEND", "none")

	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
	assert.Equal(t, "green", cfg.Render.BondColour)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MOLVIEW_STORE_BACKEND", "mongo")
	t.Setenv("MOLVIEW_STORE_DSN", "mongodb://localhost:27017")
	t.Setenv("MOLVIEW_SERVER_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.Store.Backend)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.StoreConfig().DSN)
	assert.Equal(t, "molview", cfg.Store.StoreConfig().Database)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestDefaultIsValid(t *testing.T) {
	isolate(t)
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{"unknown store", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = "postgres" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "" }},
		{"file without dir", func(c *Config) { c.Cache.Dir = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "molview"), DefaultCacheDir())
}
