// Package kv provides the key-value store that holds every durable document of the service.
// Values are JSON documents addressed by string keys such as "profile:<userId>" or "ratings:<poiId>".
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Entry is a single key/value pair returned by prefix queries.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Store abstracts the persistent key-value mapping.
// Implementations must be safe for concurrent use; they do not provide any
// transactional guarantee across Get and Set.
type Store interface {
	// Get decodes the JSON value stored at key into dst.
	// It returns ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string, dst any) error

	// Set encodes value as JSON and stores it at key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetByPrefix returns every entry whose key starts with prefix, ordered by key.
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
