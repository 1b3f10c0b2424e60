// Package di provides dependency injection factories for creating application components.
package di

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chronicle_backend/internal/app/config"
	"chronicle_backend/internal/platform/kv"
)

// ErrBackendUnavailable is returned when a forced backend has no connection.
var ErrBackendUnavailable = errors.New("backend unavailable")

// NewKVStore creates the key-value store.
// In auto mode Redis is used when available; otherwise it falls back to SQL.
func NewKVStore(backend string, rdb *redis.Client, db *gorm.DB) (kv.Store, error) {
	switch backend {
	case config.KVBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("kv backend redis: %w", ErrBackendUnavailable)
		}
		return kv.NewRedisStore(rdb), nil
	case config.KVBackendSQL:
		if db == nil {
			return nil, fmt.Errorf("kv backend sql: %w", ErrBackendUnavailable)
		}
		return kv.NewGormStore(db), nil
	case config.KVBackendAuto, "":
		if rdb != nil {
			return kv.NewRedisStore(rdb), nil
		}
		if db == nil {
			return nil, fmt.Errorf("kv backend auto: %w", ErrBackendUnavailable)
		}
		return kv.NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", backend)
	}
}
