package redisclient

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/speech_gateway/internal/config"
)

func TestNewFromURLAndPing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := New(config.RedisConfig{URL: "redis://" + mr.Addr(), DB: 2, PoolSize: 3})
	defer client.Close()

	require.Equal(t, 2, client.Options().DB)
	require.Equal(t, 3, client.Options().PoolSize)
	require.NoError(t, Ping(context.Background(), client))
}

func TestNewFallsBackToAddr(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := New(config.RedisConfig{URL: mr.Addr()})
	defer client.Close()
	require.Equal(t, mr.Addr(), client.Options().Addr)
	require.NoError(t, Ping(context.Background(), client))

	mr.Close()
	require.ErrorContains(t, Ping(context.Background(), client), "ping redis")
}

func TestConnect(t *testing.T) {
	client, err := Connect(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	require.Nil(t, client)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	addr := mr.Addr()
	client, err = Connect(context.Background(), config.RedisConfig{URL: "redis://" + addr})
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, "speechd", client.Options().ClientName)

	mr.Close()
	_, err = Connect(context.Background(), config.RedisConfig{URL: "redis://" + addr})
	require.ErrorContains(t, err, "ping redis")
}
