package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	c := Default()
	if c.Engine.MaxIterations != layout.DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", c.Engine.MaxIterations, layout.DefaultMaxIterations)
	}
	if c.Cache.Backend != cache.BackendFile {
		t.Errorf("Backend = %q, want %q", c.Cache.Backend, cache.BackendFile)
	}
	if want := filepath.Join("/tmp/xdg-cache", AppName); c.Cache.Dir != want {
		t.Errorf("Dir = %q, want %q", c.Cache.Dir, want)
	}
	if c.Server.Addr == "" || c.Server.MaxSceneBytes == 0 {
		t.Errorf("Server = %+v, want defaults", c.Server)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[engine]
max_iterations = 500
consistency_checks = true

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "12h"

[server]
addr = ":9000"
scope = "eu:"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Path != path {
		t.Errorf("Path = %q, want %q", c.Path, path)
	}
	if c.Engine.MaxIterations != 500 || !c.Engine.ConsistencyChecks {
		t.Errorf("Engine = %+v", c.Engine)
	}
	if c.Cache.Backend != cache.BackendRedis || c.Cache.RedisAddr != "cache:6379" {
		t.Errorf("Cache = %+v", c.Cache)
	}
	if c.Cache.TTL != 12*time.Hour {
		t.Errorf("TTL = %s, want 12h", c.Cache.TTL)
	}
	if c.Server.Addr != ":9000" || c.Server.Scope != "eu:" {
		t.Errorf("Server = %+v", c.Server)
	}
	if got := c.Cache.Options().Prefix; got != "lattice:" {
		t.Errorf("Options().Prefix = %q, want lattice:", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{name: "unknown key", body: "[engine]\nmax_iters = 3\n", code: errors.ErrCodeInvalidConfig},
		{name: "syntax", body: "[engine\n", code: errors.ErrCodeInvalidConfig},
		{name: "negative iterations", body: "[engine]\nmax_iterations = -1\n", code: errors.ErrCodeInvalidConfig},
		{name: "redis without addr", body: "[cache]\nbackend = \"redis\"\n", code: errors.ErrCodeInvalidConfig},
		{name: "unknown backend", body: "[cache]\nbackend = \"etcd\"\n", code: errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(explicit missing) = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	// A missing file in the default location is fine.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if c.Path != "" {
		t.Errorf("Path = %q, want empty", c.Path)
	}
}

func TestLoadDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[server]\naddr = \":7000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":7000" {
		t.Errorf("Addr = %q, want :7000", c.Server.Addr)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LATTICE_ENGINE_MAX_ITERATIONS":     "42",
		"LATTICE_ENGINE_CONSISTENCY_CHECKS": "true",
		"LATTICE_CACHE_BACKEND":             "mongo",
		"LATTICE_CACHE_MONGO_URI":           "mongodb://db",
		"LATTICE_CACHE_TTL":                 "90m",
		"LATTICE_SERVER_ADDR":               ":1234",
		"LATTICE_SERVER_MAX_SCENE_BYTES":    "2048",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var c Config
	c.Server.Addr = ":80"
	if err := c.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	if c.Engine.MaxIterations != 42 || !c.Engine.ConsistencyChecks {
		t.Errorf("Engine = %+v", c.Engine)
	}
	if c.Cache.Backend != "mongo" || c.Cache.MongoURI != "mongodb://db" || c.Cache.TTL != 90*time.Minute {
		t.Errorf("Cache = %+v", c.Cache)
	}
	if c.Server.Addr != ":1234" || c.Server.MaxSceneBytes != 2048 {
		t.Errorf("Server = %+v", c.Server)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LATTICE_ENGINE_MAX_ITERATIONS", "many"},
		{"LATTICE_ENGINE_EXTRA_ASSERTIONS", "sure"},
		{"LATTICE_CACHE_TTL", "tomorrow"},
		{"LATTICE_SERVER_MAX_SCENE_BYTES", "1MB"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == tt.key {
					return tt.value, true
				}
				return "", false
			}
			var c Config
			err := c.applyEnv(lookup)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("applyEnv() = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":9000\"\n")
	t.Setenv("LATTICE_SERVER_ADDR", ":9001")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":9001" {
		t.Errorf("Addr = %q, want :9001", c.Server.Addr)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	dir, err := CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/custom/cache", AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
}
