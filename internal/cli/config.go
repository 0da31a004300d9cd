package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperrors "github.com/lineagelab/idhist/pkg/errors"
)

// Config holds CLI configuration loaded from a TOML file.
//
// An example config:
//
//	[cache]
//	dir = "/var/cache/idhist"
//	backend = "file"          # file or redis
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	uri = "mongodb://localhost:27017"
//	database = "idhist"
//	collection = "events"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Dir     string      `toml:"dir"`
	Backend string      `toml:"backend"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig holds record store connection settings.
type StoreConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: "file"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the TOML config at path, or the default location when
// path is empty. A missing default file is not an error; a missing explicit
// file is.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis":
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"invalid cache backend %q (must be file or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
	}
	return nil
}

func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
