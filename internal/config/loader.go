package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/molview/pkg/render"
	"github.com/matzehuels/molview/pkg/store"
)

const (
	appName = "molview"

	// envPrefix is the environment variable prefix for every setting.
	envPrefix = "MOLVIEW"

	// FileName is the config file looked up when no path is given.
	FileName = appName + ".toml"
)

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxUploadBytes  = 10 << 20
	DefaultKeyPrefix       = "molview:"
	DefaultLogLevel        = "info"
)

// newViper builds a viper instance with TOML files, the MOLVIEW_ env prefix
// and every default registered, so nested keys like "store.dsn" resolve to
// MOLVIEW_STORE_DSN even when no file sets them.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("server.metrics", true)

	v.SetDefault("store.backend", store.BackendMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.database", appName)

	v.SetDefault("cache.backend", CacheFile)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", DefaultKeyPrefix)
	v.SetDefault("cache.scope", "")

	v.SetDefault("render.bond_colour", render.DefaultBondColour)
	v.SetDefault("render.background", "")
	v.SetDefault("render.no_gradients", false)

	v.SetDefault("elements.path", "")
	v.SetDefault("log.level", DefaultLogLevel)
	return v
}

// Load reads configuration from path, or from molview.toml in the working
// directory and the user config directory when path is empty. A missing
// file is only an error when path was given explicitly. MOLVIEW_*
// environment variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describe(path), err)
		}
	}
	return unmarshalAndValidate(v)
}

// LoadFromEnv builds a Config from defaults and MOLVIEW_* variables only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndValidate(newViper())
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			Metrics:         true,
		},
		Store: StoreConfig{Backend: store.BackendMemory, Database: appName},
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       DefaultCacheDir(),
			RedisAddr: "localhost:6379",
			KeyPrefix: DefaultKeyPrefix,
		},
		Render: RenderConfig{BondColour: render.DefaultBondColour},
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func describe(path string) string {
	if path == "" {
		return FileName
	}
	return path
}

// DefaultCacheDir returns the cache directory using the XDG convention
// (~/.cache/molview/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// configDir returns ~/.config/molview (or $XDG_CONFIG_HOME/molview).
func configDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
