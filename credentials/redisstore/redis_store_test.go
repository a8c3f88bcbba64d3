package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/credentials/redisstore"
	"github.com/jrsteele09/go-car-rental/credentials/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		_, client := setupTestRedis(t)
		return redisstore.New(client, "carrental:")
	})
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := redisstore.New(client, "carrental:")

	require.NoError(t, s.Set(context.Background(), credentials.KeyAccess, "tok"))
	require.True(t, mr.Exists("carrental:access"))
	require.False(t, mr.Exists("access"))

	v, err := mr.Get("carrental:access")
	require.NoError(t, err)
	require.Equal(t, "tok", v)
}

func TestConnect(t *testing.T) {
	mr, _ := setupTestRedis(t)

	client, err := redisstore.Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = redisstore.Connect(context.Background(), mr.Addr(), "", 0)
	require.Error(t, err)
}
