package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN for prefix queries.
const scanBatch = 200

// RedisStore implements Store on top of plain Redis strings.
type RedisStore struct {
	rdb *redis.Client
}

// RedisStoreがStoreを実装していることをコンパイル時に検証します。
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore using the given client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Get retrieves and decodes the value stored at key.
func (s *RedisStore) Get(ctx context.Context, key string, dst any) error {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// Set stores value at key without expiration.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// GetByPrefix walks the keyspace with SCAN and loads the matching values with MGET.
func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	pattern := escapeGlob(prefix) + "*"

	seen := map[string]struct{}{}
	var keys []string
	var cursor uint64
	for {
		batch, cur, err := s.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", pattern, err)
		}
		for _, k := range batch {
			// SCAN may return the same key more than once
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return []Entry{}, nil
	}
	sort.Strings(keys)

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]Entry, 0, len(keys))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		out = append(out, Entry{Key: keys[i], Value: json.RawMessage(str)})
	}
	return out, nil
}

// escapeGlob escapes the characters that SCAN MATCH treats as glob syntax.
func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)
	return r.Replace(s)
}
