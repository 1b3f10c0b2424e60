package kv

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// single connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db), "failed to migrate table")
	return db
}

func TestGormStore_SetGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "profile:u1", doc{Name: "Anna", Count: 1}))

	var got doc
	require.NoError(t, store.Get(ctx, "profile:u1", &got))
	assert.Equal(t, doc{Name: "Anna", Count: 1}, got)
}

func TestGormStore_Set_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", doc{Name: "first"}))
	require.NoError(t, store.Set(ctx, "k", doc{Name: "second"}))

	var got doc
	require.NoError(t, store.Get(ctx, "k", &got))
	assert.Equal(t, "second", got.Name)

	var count int64
	require.NoError(t, db.Model(&EntryModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)

	var got doc
	assert.ErrorIs(t, store.Get(context.Background(), "missing", &got), ErrNotFound)
}

func TestGormStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", 1))
	require.NoError(t, store.Delete(ctx, "k"))

	var got int
	assert.ErrorIs(t, store.Get(ctx, "k", &got), ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestGormStore_GetByPrefix(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ratings:b", []int{2}))
	require.NoError(t, store.Set(ctx, "ratings:a", []int{1}))
	require.NoError(t, store.Set(ctx, "ratingsXa", []int{9}))
	require.NoError(t, store.Set(ctx, "profile:u1", doc{Name: "Anna"}))

	entries, err := store.GetByPrefix(ctx, "ratings:")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ratings:a", entries[0].Key)
	assert.Equal(t, "ratings:b", entries[1].Key)
	assert.JSONEq(t, `[2]`, string(entries[1].Value))
}

func TestGormStore_GetByPrefix_WildcardsAreLiteral(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a_b:1", 1))
	require.NoError(t, store.Set(ctx, "axb:1", 2))
	require.NoError(t, store.Set(ctx, "100%:1", 3))

	entries, err := store.GetByPrefix(ctx, "a_b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a_b:1", entries[0].Key)

	entries, err = store.GetByPrefix(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGormStore_ConcurrentSet(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Set(ctx, "shared", n))
		}(i)
	}
	wg.Wait()

	var got int
	require.NoError(t, store.Get(ctx, "shared", &got))
	assert.GreaterOrEqual(t, got, 0)
	assert.Less(t, got, 10)
}
