package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore stores documents as plain Redis strings.
// All keys are namespaced with kanban:{namespace}: so that several boards or
// users can share one Redis server without interference.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisStore creates a store for the given namespace.
// Returns an error if namespace is empty.
func NewRedisStore(redisOpts *redis.Options, namespace string) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &RedisStore{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Init verifies Redis connectivity.
func (r *RedisStore) Init(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach Redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, RedisKey(r.namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read from Redis: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, RedisKey(r.namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write to Redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, RedisKey(r.namespace, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

// Keys uses SCAN to iterate matching keys without blocking the server.
func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	nsPrefix := RedisKey(r.namespace, "")
	iter := r.rdb.Scan(ctx, 0, escapeGlob(nsPrefix+prefix)+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		// MATCH is only a filter hint; the literal prefix is authoritative.
		if !strings.HasPrefix(iter.Val(), nsPrefix+prefix) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(iter.Val(), nsPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// escapeGlob backslash-escapes the characters SCAN MATCH treats as pattern
// syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
