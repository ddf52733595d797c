package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewClient_Success(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{
		Host:     mr.Host(),
		Port:     mr.Port(),
		PoolSize: 2,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", time.Minute).Err())
	mr.CheckGet(t, "k", "v")
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	client, err := NewClient(context.Background(), Config{
		Host:        host,
		Port:        port,
		DialTimeout: 200 * time.Millisecond,
	}, zaptest.NewLogger(t))

	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
