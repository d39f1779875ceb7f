package kv_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/umbra-img/umbra/internal/platform/kv"
)

// conformance exercises the Store contract shared by every backend.
func conformance(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "users", "missing")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)

	require.NoError(t, store.Put(ctx, "users", "a@b.com", []byte(`{"id":"1"}`)))
	require.NoError(t, store.Put(ctx, "users", "c@d.com", []byte(`{"id":"2"}`)))

	value, err := store.Get(ctx, "users", "a@b.com")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"1"}`), value)

	// Overwrite replaces the value.
	require.NoError(t, store.Put(ctx, "users", "a@b.com", []byte(`{"id":"9"}`)))
	value, err = store.Get(ctx, "users", "a@b.com")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"9"}`), value)

	entries, err := store.Scan(ctx, "users")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Buckets are isolated.
	entries, err = store.Scan(ctx, "tokens")
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, store.Delete(ctx, "users", "a@b.com"))
	_, err = store.Get(ctx, "users", "a@b.com")
	require.ErrorIs(t, err, kv.ErrKeyNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "users", "a@b.com"))

	first, err := store.Incr(ctx, "user_id")
	require.NoError(t, err)
	second, err := store.Incr(ctx, "user_id")
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}

func TestMemoryStore(t *testing.T) {
	conformance(t, kv.NewMemory())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	conformance(t, kv.NewRedis(client, "test"))
}

func TestMemoryStoreValueIsolation(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	original := []byte("payload")
	require.NoError(t, store.Put(ctx, "b", "k", original))
	original[0] = 'X'

	value, err := store.Get(ctx, "b", "k")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), value)

	// Mutating the returned slice must not affect the stored value.
	value[0] = 'Y'
	again, err := store.Get(ctx, "b", "k")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), again)
}
