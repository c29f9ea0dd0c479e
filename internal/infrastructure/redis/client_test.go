package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/internal/config"
)

func TestNewClient(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(context.Background(), config.RedisConfig{URL: "redis://" + srv.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	srv.CheckGet(t, "k", "v")
}

func TestNewClient_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewClient(context.Background(), config.RedisConfig{URL: "redis://" + addr})
	require.ErrorContains(t, err, addr)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{URL: "::not a url"})
	require.Error(t, err)
}

func TestNewClient_SelectsConfiguredDB(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(context.Background(), config.RedisConfig{URL: "redis://" + srv.Addr(), DB: 2})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	require.False(t, srv.Exists("k"))
	v, err := srv.DB(2).Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}
