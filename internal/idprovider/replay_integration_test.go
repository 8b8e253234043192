//go:build integration

package idprovider_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/spec-kit/travel-community/internal/idprovider"
)

func TestRedisReplayGuard(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	guard := idprovider.NewRedisReplayGuard(client, time.Minute)

	first, err := guard.FirstDelivery(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := guard.FirstDelivery(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, again)

	ttl, err := client.TTL(ctx, "webhook:delivery:evt-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
