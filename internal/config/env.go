package config

import (
	"strconv"
	"time"

	"github.com/matzehuels/lattice/pkg/errors"
)

type lookupFunc func(key string) (string, bool)

// applyEnv overrides fields from LATTICE_<SECTION>_<KEY> variables.
func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.int("ENGINE_MAX_ITERATIONS", &c.Engine.MaxIterations)
	e.bool("ENGINE_CONSISTENCY_CHECKS", &c.Engine.ConsistencyChecks)
	e.bool("ENGINE_EXTRA_ASSERTIONS", &c.Engine.ExtraAssertions)

	e.string("CACHE_BACKEND", &c.Cache.Backend)
	e.string("CACHE_DIR", &c.Cache.Dir)
	e.string("CACHE_REDIS_ADDR", &c.Cache.RedisAddr)
	e.string("CACHE_MONGO_URI", &c.Cache.MongoURI)
	e.string("CACHE_MONGO_DATABASE", &c.Cache.MongoDatabase)
	e.string("CACHE_MONGO_COLLECTION", &c.Cache.MongoCollection)
	e.string("CACHE_PREFIX", &c.Cache.Prefix)
	e.duration("CACHE_TTL", &c.Cache.TTL)

	e.string("SERVER_ADDR", &c.Server.Addr)
	e.duration("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	e.duration("SERVER_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	e.int64("SERVER_MAX_SCENE_BYTES", &c.Server.MaxSceneBytes)
	e.string("SERVER_SCOPE", &c.Server.Scope)

	return e.err
}

// envReader keeps the first parse error so applyEnv reads as a flat list.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	return e.lookup(EnvPrefix + key)
}

func (e *envReader) fail(key, v string, err error) {
	e.err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, key, v)
}

func (e *envReader) string(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = d
	}
}
