// Package config loads lattice.toml and applies LATTICE_* environment
// overrides.
//
// Lookup order for each setting, later wins:
//
//  1. built-in defaults
//  2. the config file (--config, or $XDG_CONFIG_HOME/lattice/lattice.toml)
//  3. LATTICE_<SECTION>_<KEY> environment variables
//
// Example file:
//
//	[engine]
//	max_iterations = 10000
//	consistency_checks = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/layout"
)

const (
	// AppName names the config and cache directories.
	AppName = "lattice"

	// FileName is the config file looked up in the config directory.
	FileName = "lattice.toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LATTICE_"
)

// Config is the full lattice configuration.
type Config struct {
	Engine layout.Options `toml:"engine"`
	Cache  Cache          `toml:"cache"`
	Server Server         `toml:"server"`

	// Path is the file the config was read from, empty when none was found.
	Path string `toml:"-"`
}

// Cache selects the report cache backend.
type Cache struct {
	Backend         string        `toml:"backend"`
	Dir             string        `toml:"dir"`
	RedisAddr       string        `toml:"redis_addr"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	Prefix          string        `toml:"prefix"`
	TTL             time.Duration `toml:"ttl"`
}

// Server configures the HTTP inspector.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`

	// MaxSceneBytes caps POST /scenes bodies.
	MaxSceneBytes int64 `toml:"max_scene_bytes"`

	// Scope prefixes every cache key the server writes, so several
	// inspectors can share one backend.
	Scope string `toml:"scope"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills in zero values.
func (c *Config) SetDefaults() {
	c.Engine.SetDefaults()
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Backend == cache.BackendFile && c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		} else {
			c.Cache.Backend = cache.BackendNone
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.MaxSceneBytes == 0 {
		c.Server.MaxSceneBytes = 1 << 20
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[engine]")
	}
	if err := c.Cache.Options().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[cache]")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[cache] ttl must not be negative")
	}
	if c.Server.MaxSceneBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[server] max_scene_bytes must not be negative")
	}
	return nil
}

// Options converts the section into the cache package's config.
func (c Cache) Options() cache.Config {
	cfg := cache.Config{
		Backend:         c.Backend,
		Dir:             c.Dir,
		RedisAddr:       c.RedisAddr,
		MongoURI:        c.MongoURI,
		MongoDatabase:   c.MongoDatabase,
		MongoCollection: c.MongoCollection,
		Prefix:          c.Prefix,
	}
	cfg.SetDefaults()
	return cfg
}

// Load reads the config at path. An empty path means the default location,
// where a missing file is not an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	var c Config
	if path != "" {
		md, err := toml.DecodeFile(path, &c)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
			}
			c.Path = path
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		default:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/lattice/lattice.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/lattice/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
