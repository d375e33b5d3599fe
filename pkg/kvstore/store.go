package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// ErrNotFound is returned by Store.Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed document store with an explicit Init/Close lifecycle.
// Implementations are safe for concurrent use.
type Store interface {
	// Init prepares the backend (creates tables, verifies connectivity).
	Init(ctx context.Context) error

	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists logical keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases backend resources. The store must not be used afterwards.
	Close() error
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetJSON decodes the document stored under key into a T.
// Returns def when the key does not exist.
func GetJSON[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if IsNotFound(err) {
			return def, nil
		}
		return def, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return def, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return v, nil
}

// SetJSON encodes v and stores it under key, replacing any previous value.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
