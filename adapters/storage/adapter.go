// Package storage provides the key-value persistence used by the cart and selection sets.
// Supports multiple backends: file, memory, Redis, PostgreSQL.
//
// Every value is a complete serialized snapshot of one collection; there are no partial
// updates, no transactions and no conflict resolution. The last write wins.
package storage

import (
	"context"
	"fmt"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// Store is the storage interface
type Store interface {
	// Get returns the value stored under key. found is false when the key was never written
	// or has been deleted.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set replaces the value stored under key
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend
	Close() error
}

// Config selects and configures a backend
type Config struct {
	// Backend is the backend type
	Backend Backend `json:"backend"`

	// Path is the state file for the file backend
	Path string `json:"path,omitempty"`

	// RedisURL is the connection URL for the redis backend
	RedisURL string `json:"redis_url,omitempty"`

	// PostgresDSN is the connection string for the postgres backend
	PostgresDSN string `json:"postgres_dsn,omitempty"`

	// Namespace prefixes every key in shared backends (redis, postgres)
	Namespace string `json:"namespace,omitempty"`
}

// New opens the backend described by cfg
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(cfg.Path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.Namespace)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

func namespaced(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}
