package risk

import (
	"context"
	"time"

	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

// OptionQuote 一次期权定价的完整记录
// 用于缓存之外的事件发布
type OptionQuote struct {
	Params   options.Params `json:"params"`
	Result   options.Result `json:"result"`
	Cached   bool           `json:"cached"`
	QuotedAt time.Time      `json:"quoted_at"`
}

// VaRReport 一次 VaR 模拟的完整记录
type VaRReport struct {
	// RunID: 雪花算法生成的唯一 ID
	RunID int64 `json:"run_id"`

	Params montecarlo.Params `json:"params"`
	Result montecarlo.Result `json:"result"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// VaROutcome 异步 VaR 的结果
type VaROutcome struct {
	Report VaRReport
	Err    error
}

// QuoteCache 报价缓存
// 由 pkg/cache 的 Redis 实现提供
type QuoteCache interface {
	Get(ctx context.Context, p options.Params) (options.Result, bool, error)
	Set(ctx context.Context, p options.Params, res options.Result) error
}

// Publisher 结果事件发布者
// 由 pkg/kafka 和 pkg/nats 实现
type Publisher interface {
	PublishQuote(ctx context.Context, q OptionQuote) error
	PublishVaR(ctx context.Context, r VaRReport) error
}

// Publishers 把多个发布者组合成一个，逐个调用，返回第一个错误
type Publishers []Publisher

func (ps Publishers) PublishQuote(ctx context.Context, q OptionQuote) error {
	var first error
	for _, p := range ps {
		if err := p.PublishQuote(ctx, q); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (ps Publishers) PublishVaR(ctx context.Context, r VaRReport) error {
	var first error
	for _, p := range ps {
		if err := p.PublishVaR(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
