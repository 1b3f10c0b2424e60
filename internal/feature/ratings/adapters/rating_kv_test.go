package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chronicle_backend/internal/feature/ratings/domain/entity"
	"chronicle_backend/internal/platform/kv"
)

func newRedisStore(t *testing.T) (kv.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return kv.NewRedisStore(rdb), mr
}

func newSQLStore(t *testing.T) kv.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, kv.AutoMigrate(db))
	return kv.NewGormStore(db)
}

// backends runs fn once per Store implementation.
func backends(t *testing.T, fn func(t *testing.T, store kv.Store)) {
	t.Run("redis", func(t *testing.T) {
		store, _ := newRedisStore(t)
		fn(t, store)
	})
	t.Run("sql", func(t *testing.T) {
		fn(t, newSQLStore(t))
	})
}

func TestRatingKV_ListEmpty(t *testing.T) {
	backends(t, func(t *testing.T, store kv.Store) {
		got, err := NewRatingKV(store).List(context.Background(), "nowhere")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRatingKV_PrependNewestFirst(t *testing.T) {
	backends(t, func(t *testing.T, store kv.Store) {
		repo := NewRatingKV(store)
		ctx := context.Background()

		first := entity.Rating{ID: 1, Date: 1, PoiID: "p", UserID: "u", Author: "Anna", Rating: 4}
		second := entity.Rating{ID: 2, Date: 2, PoiID: "p", UserID: "u", Author: "Anna", Rating: 5, Text: "again"}
		require.NoError(t, repo.Prepend(ctx, first))
		require.NoError(t, repo.Prepend(ctx, second))

		got, err := repo.List(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, []entity.Rating{second, first}, got)
	})
}

func TestRatingKV_StoredShape(t *testing.T) {
	store, mr := newRedisStore(t)
	repo := NewRatingKV(store)

	r := entity.Rating{ID: 1736930000123, Date: 1736930000123, PoiID: "helsinki-cathedral", UserID: "uid-1", Author: "Anna", Rating: 5, Text: "Beautiful"}
	require.NoError(t, repo.Prepend(context.Background(), r))

	raw, err := mr.Get("ratings:helsinki-cathedral")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1736930000123,"userId":"uid-1","poiId":"helsinki-cathedral","author":"Anna","rating":5,"text":"Beautiful","date":1736930000123}]`, raw)
}

func TestRatingKV_ListAll(t *testing.T) {
	backends(t, func(t *testing.T, store kv.Store) {
		repo := NewRatingKV(store)
		ctx := context.Background()

		require.NoError(t, repo.Prepend(ctx, entity.Rating{ID: 1, PoiID: "a", Rating: 5}))
		require.NoError(t, repo.Prepend(ctx, entity.Rating{ID: 2, PoiID: "b", Rating: 3}))
		require.NoError(t, store.Set(ctx, "profile:uid-1", map[string]string{"nickname": "Anna"}))
		require.NoError(t, store.Set(ctx, "ratings:broken", map[string]string{"not": "a list"}))

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, 5, all["a"][0].Rating)
		assert.Equal(t, 3, all["b"][0].Rating)
	})
}

// Concurrent prepends to one key are an unguarded read-modify-write, so
// updates may be lost. The list never grows beyond the number of writers and
// always keeps at least one of them.
func TestRatingKV_ConcurrentPrependIsBounded(t *testing.T) {
	const writers = 20

	backends(t, func(t *testing.T, store kv.Store) {
		repo := NewRatingKV(store)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.Prepend(ctx, entity.Rating{ID: int64(i), PoiID: "contended", Author: fmt.Sprint(i), Rating: 3})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.List(ctx, "contended")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), writers)
		assert.GreaterOrEqual(t, len(got), 1)

		seen := map[int64]bool{}
		for _, r := range got {
			assert.False(t, seen[r.ID], "rating %d duplicated", r.ID)
			seen[r.ID] = true
		}
	})
}
