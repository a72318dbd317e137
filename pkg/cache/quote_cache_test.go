package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quant.com/pkg/risk/options"
)

// setupRedis 初始化 Redis 连接并清空测试数据
func setupRedis(t *testing.T) *RedisQuoteCache {
	// 假设本地 Redis 运行在 localhost:6379
	c := NewRedisQuoteCacheFromAddr("localhost:6379", time.Minute)
	if err := c.Ping(context.Background()); err != nil {
		t.Skipf("skipping test; redis not available: %v", err)
	}
	c.client.FlushDB(context.Background())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestQuoteKey(t *testing.T) {
	p := options.Params{Spot: 45, Strike: 40, Expiry: 0.5, Rate: 0.1, Volatility: 0.2}
	require.Equal(t, "risk:quote:45:40:0.5:0.1:0.2", QuoteKey(p))

	p.Rate = -0.01
	require.Equal(t, "risk:quote:45:40:0.5:-0.01:0.2", QuoteKey(p))
}

func TestRedisQuoteCache_GetSet(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()

	p := options.Params{Spot: 45, Strike: 40, Expiry: 0.5, Rate: 0.1, Volatility: 0.2}

	_, ok, err := c.Get(ctx, p)
	require.NoError(t, err)
	require.False(t, ok)

	want, err := options.Price(p)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, p, want))

	got, ok, err := c.Get(ctx, p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	ttl, err := c.client.TTL(ctx, QuoteKey(p)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}
