// Package config loads molview settings from molview.toml and MOLVIEW_*
// environment variables.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/molview/pkg/store"
)

// Config is the complete molview configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Render   RenderConfig   `mapstructure:"render"`
	Elements ElementsConfig `mapstructure:"elements"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures `molview serve`.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	Metrics         bool          `mapstructure:"metrics"`
}

// StoreConfig selects the molecule store.
type StoreConfig struct {
	Backend  string `mapstructure:"backend"` // memory, postgres or mongo
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"` // mongo only
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string `mapstructure:"backend"` // file, redis or none
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"` // redis only
	Scope         string `mapstructure:"scope"`      // namespaces keys of deployments sharing a backend
}

// RenderConfig holds drawing defaults applied when a request leaves them unset.
type RenderConfig struct {
	BondColour  string `mapstructure:"bond_colour"`
	Background  string `mapstructure:"background"`
	NoGradients bool   `mapstructure:"no_gradients"`
}

// ElementsConfig points at an optional user element table merged over the
// built-in one.
type ElementsConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// StoreConfig converts the section into the store package's config.
func (s StoreConfig) StoreConfig() store.Config {
	return store.Config{Backend: s.Backend, DSN: s.DSN, Database: s.Database}
}

// LogLevel parses Log.Level, falling back to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Validate checks the configuration for inconsistent or missing values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendPostgres, store.BackendMongo:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for backend %q", c.Store.Backend)
		}
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}

	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required for the file backend")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
