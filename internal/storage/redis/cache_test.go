package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
)

func newTestCache(t *testing.T) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	cache := NewSnapshotCacheWithClient(client, time.Hour, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = cache.Close() })
	return cache, srv
}

func TestSnapshotCache_StoreAndLoad(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	st := player.NewState("Zara", 3)
	st.AddItem(entity.ItemID(2), 2)
	st.AddTag("met_blacksmith")

	require.NoError(t, cache.Store(ctx, "sess-1", st))

	got, err := cache.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Zara", got.Name)
	assert.Equal(t, entity.RoomID(3), got.RoomID)
	assert.Equal(t, 2, got.Inventory[entity.ItemID(2)])
	assert.True(t, got.HasTag("met_blacksmith"))
}

func TestSnapshotCache_LoadMissing(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	st := player.NewState("Zara", 0)
	require.NoError(t, cache.Store(ctx, "sess-1", st))
	require.NoError(t, cache.Delete(ctx, "sess-1"))

	_, err := cache.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	// deleting again is fine
	assert.NoError(t, cache.Delete(ctx, "sess-1"))
}

func TestSnapshotCache_TTLExpiry(t *testing.T) {
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	cache := NewSnapshotCacheWithClient(client, time.Minute, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	st := player.NewState("Zara", 0)
	require.NoError(t, cache.Store(ctx, "sess-1", st))

	srv.FastForward(2 * time.Minute)

	_, err := cache.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotCache_Ping(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	assert.NoError(t, cache.Ping(ctx))

	srv.Close()
	assert.Error(t, cache.Ping(ctx))
}
