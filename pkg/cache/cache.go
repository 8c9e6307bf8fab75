// Package cache stores run reports and rendered artifacts.
//
// # Backends
//
//   - [NullCache]: stores nothing, for one-off runs
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a Redis server, for shared inspector deployments
//   - [MongoCache]: a MongoDB collection with a TTL index
//
// [Open] picks a backend from a [Config].
//
// # Keys
//
// A [Keyer] derives keys from the hash of the scene bytes plus the options
// that change the result, so editing a scene or running it with different
// engine options never reads a stale report. [ScopedKeyer] prefixes every
// key, which lets several inspector instances share one backend.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/lattice/pkg/errors"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is a
	// miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string

	// Dir is the FileCache directory.
	Dir string

	RedisAddr string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Prefix namespaces Redis keys so Clear only drops this cache's entries.
	Prefix string
}

// SetDefaults fills in zero values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "lattice"
	}
	if c.MongoCollection == "" {
		c.MongoCollection = "cache"
	}
	if c.Prefix == "" {
		c.Prefix = "lattice:"
	}
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone:
	case BackendFile:
		if c.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "file cache needs a directory")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs an address")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo cache needs a URI")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Backend)
	}
	return nil
}

// Open connects to the backend cfg selects.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendFile:
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.RedisAddr, cfg.Prefix)
	case BackendMongo:
		return NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	return NewNullCache(), nil
}
