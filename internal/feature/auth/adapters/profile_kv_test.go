package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronicle_backend/internal/feature/auth/domain/entity"
	"chronicle_backend/internal/platform/kv"
)

func setupProfileKV(t *testing.T) (*ProfileKV, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewProfileKV(kv.NewRedisStore(rdb)), mr
}

func TestProfileKV_CreateAndFind(t *testing.T) {
	repo, mr := setupProfileKV(t)
	ctx := context.Background()

	created := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	p := &entity.Profile{UserID: "uid-1", Email: "a@b.com", Nickname: "Anna", CreatedAt: created}
	require.NoError(t, repo.Create(ctx, p))

	raw, err := mr.Get("profile:uid-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"uid-1","email":"a@b.com","nickname":"Anna","createdAt":"2025-01-15T09:30:00Z"}`, raw)

	got, err := repo.FindByUserID(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Anna", got.Nickname)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestProfileKV_FindMissingReturnsNil(t *testing.T) {
	repo, _ := setupProfileKV(t)

	got, err := repo.FindByUserID(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileKV_CreateOverwrites(t *testing.T) {
	repo, _ := setupProfileKV(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: "uid-1", Nickname: "Anna"}))
	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: "uid-1", Nickname: "Aino"}))

	got, err := repo.FindByUserID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Aino", got.Nickname)
}

func TestProfileKV_StoreErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := NewProfileKV(kv.NewRedisStore(rdb))

	mock.ExpectGet("profile:uid-1").SetErr(assert.AnError)
	_, err := repo.FindByUserID(context.Background(), "uid-1")
	assert.ErrorIs(t, err, assert.AnError)

	require.NoError(t, mock.ExpectationsWereMet())
}
