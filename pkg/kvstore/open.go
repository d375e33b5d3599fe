package kvstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string // memory, sqlite or redis
	Path      string // sqlite database file
	RedisURL  string // redis://host:port/db
	Namespace string // redis key namespace
}

// Open constructs the backend named in opts. The caller must still call Init.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.Path)
	case BackendRedis:
		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		return NewRedisStore(redisOpts, opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown store backend: %q (must be 'memory', 'sqlite' or 'redis')", opts.Backend)
	}
}
