// 文件: pkg/cache/quote_cache.go
// 期权报价 Redis 缓存
//
// 【缓存策略】
// - 定价是纯函数：相同参数永远得到相同结果，没有失效问题
// - 只设置 TTL 控制内存，不做主动删除
// - 读: 先查 Redis，miss 由调用方计算后回填

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"quant.com/pkg/risk/options"
)

const (
	// 报价 Key: risk:quote:{S}:{K}:{T}:{r}:{σ}
	quoteKeyPrefix = "risk:quote:"

	// 默认过期时间
	DefaultQuoteTTL = 10 * time.Minute
)

// RedisQuoteCache 期权报价缓存
type RedisQuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisQuoteCache 创建缓存
// ttl <= 0 时使用 DefaultQuoteTTL
func NewRedisQuoteCache(client *redis.Client, ttl time.Duration) *RedisQuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &RedisQuoteCache{client: client, ttl: ttl}
}

// NewRedisQuoteCacheFromAddr 按地址创建客户端和缓存
func NewRedisQuoteCacheFromAddr(addr string, ttl time.Duration) *RedisQuoteCache {
	return NewRedisQuoteCache(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// Get 查询缓存，miss 返回 (Result{}, false, nil)
func (c *RedisQuoteCache) Get(ctx context.Context, p options.Params) (options.Result, bool, error) {
	data, err := c.client.Get(ctx, QuoteKey(p)).Bytes()
	if errors.Is(err, redis.Nil) {
		return options.Result{}, false, nil
	}
	if err != nil {
		return options.Result{}, false, err
	}

	var res options.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return options.Result{}, false, err
	}
	return res, true, nil
}

// Set 回填缓存
func (c *RedisQuoteCache) Set(ctx context.Context, p options.Params, res options.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, QuoteKey(p), data, c.ttl).Err()
}

// Ping 检查连接
func (c *RedisQuoteCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭客户端
func (c *RedisQuoteCache) Close() error {
	return c.client.Close()
}

// QuoteKey 生成缓存 Key
// 使用 strconv.FormatFloat 的最短表示，保证同一参数得到同一 Key
func QuoteKey(p options.Params) string {
	var b strings.Builder
	b.Grow(64)
	b.WriteString(quoteKeyPrefix)
	for i, v := range []float64{p.Spot, p.Strike, p.Expiry, p.Rate, p.Volatility} {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
