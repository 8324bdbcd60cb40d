package storage

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisSlot(t *testing.T) *RedisSlot {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	return NewRedisSlot(client, "gamms_cart")
}

func TestRedisSlot_RoundTrip(t *testing.T) {
	slot := setupRedisSlot(t)
	ctx := context.Background()

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	payload := []byte(`[{"id":"2","quantity":4}]`)
	require.NoError(t, slot.Write(ctx, payload))

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRedisSlot_DeleteRemovesKey(t *testing.T) {
	slot := setupRedisSlot(t)
	ctx := context.Background()

	require.NoError(t, slot.Write(ctx, []byte("x")))
	require.NoError(t, slot.Delete(ctx))

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is a no-op
	require.NoError(t, slot.Delete(ctx))
}
