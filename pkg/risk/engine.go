package risk

import (
	"context"
	"log"
	"time"

	"quant.com/pkg/ids"
	"quant.com/pkg/risk/montecarlo"
	"quant.com/pkg/risk/options"
)

// Engine 是风险计算的统一入口。
// 你可以把它理解成“一个计算器”：
// 期权参数 → 报价，组合参数 → VaR 报告。
//
// 两个计算互相独立，不共享状态。缓存和发布都是可选的旁路：
// 它们失败只记日志，不影响计算结果。
type Engine struct {
	sim   *montecarlo.Simulator
	cache QuoteCache
	pub   Publisher
}

// EngineOption 引擎选项
type EngineOption func(*Engine)

// WithSimulator 指定模拟器 (例如固定种子)
func WithSimulator(sim *montecarlo.Simulator) EngineOption {
	return func(e *Engine) { e.sim = sim }
}

// WithQuoteCache 启用报价缓存
func WithQuoteCache(c QuoteCache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithPublisher 启用结果发布
func WithPublisher(p Publisher) EngineOption {
	return func(e *Engine) { e.pub = p }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.sim == nil {
		e.sim = montecarlo.NewSimulator()
	}
	return e
}

// PriceOption 期权定价
// 调用方每次需要新价格时显式调用，没有隐式的响应式重算
func (e *Engine) PriceOption(ctx context.Context, p options.Params) (options.Result, error) {
	if e.cache != nil {
		res, ok, err := e.cache.Get(ctx, p)
		if err != nil {
			log.Printf("[Risk] quote cache get failed: %v", err)
		} else if ok {
			e.publishQuote(ctx, OptionQuote{Params: p, Result: res, Cached: true, QuotedAt: time.Now()})
			return res, nil
		}
	}

	res, err := options.Price(p)
	if err != nil {
		return options.Result{}, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, p, res); err != nil {
			log.Printf("[Risk] quote cache set failed: %v", err)
		}
	}
	e.publishQuote(ctx, OptionQuote{Params: p, Result: res, QuotedAt: time.Now()})
	return res, nil
}

// ComputeVaR 同步运行一次 VaR 模拟
func (e *Engine) ComputeVaR(ctx context.Context, p montecarlo.Params) (VaRReport, error) {
	start := time.Now()
	res, err := e.sim.Simulate(p)
	if err != nil {
		return VaRReport{}, err
	}

	report := VaRReport{
		RunID:     ids.NextRunID(),
		Params:    p,
		Result:    res,
		StartedAt: start,
		Elapsed:   time.Since(start),
	}
	log.Printf("[Risk] var run %d: n=%d c=%.2f h=%d var=%.2f (%s)",
		report.RunID, p.Simulations, p.ConfidenceLevel, p.HorizonDays, res.VaR, report.Elapsed)

	if e.pub != nil {
		if err := e.pub.PublishVaR(ctx, report); err != nil {
			log.Printf("[Risk] publish var run %d failed: %v", report.RunID, err)
		}
	}
	return report, nil
}

// ComputeVaRAsync 非阻塞版本
// 返回的 channel 恰好收到一个结果后关闭；模拟本身不可取消
func (e *Engine) ComputeVaRAsync(ctx context.Context, p montecarlo.Params) <-chan VaROutcome {
	ch := make(chan VaROutcome, 1)
	go func() {
		defer close(ch)
		report, err := e.ComputeVaR(ctx, p)
		ch <- VaROutcome{Report: report, Err: err}
	}()
	return ch
}

func (e *Engine) publishQuote(ctx context.Context, q OptionQuote) {
	if e.pub == nil {
		return
	}
	if err := e.pub.PublishQuote(ctx, q); err != nil {
		log.Printf("[Risk] publish quote failed: %v", err)
	}
}
