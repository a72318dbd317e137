// 文件: pkg/risk/montecarlo/simulator.go
// 蒙特卡洛 VaR 模拟器
//
// 流程:
//  1. 用 Box-Muller 采样 z，生成 n 个情景损益
//     pnl = P·μ_d·h + P·σ_d·z·√h
//  2. 升序排序
//  3. 下尾分位点 rank = floor((1-c)·n)，VaR = -sorted[rank]
//  4. 50 桶直方图
//  5. 均值 / 围绕确定性期望的离散度

package montecarlo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"quant.com/pkg/risk/normal"
)

// 参数上限
const (
	// MaxSimulations 单次模拟次数上限，防止一次请求吃光内存
	MaxSimulations = 10_000_000

	// MaxPortfolioValue 组合市值上限，保证离差平方和不会溢出成 +Inf
	MaxPortfolioValue = 1e15

	// MaxHorizonDays 持有期上限 (100 年)
	MaxHorizonDays = 36_500
)

// SourceFactory 为每次模拟创建独立的均匀随机源
type SourceFactory func() normal.Uniform

// Simulator VaR 模拟器
//
// 无共享可变状态：每次 Simulate 都新建自己的随机源和情景切片，
// 多个 goroutine 可以并发调用同一个 Simulator。
type Simulator struct {
	newSource SourceFactory
}

// Option 模拟器选项
type Option func(*Simulator)

// WithSeed 固定种子：相同参数的每次调用得到完全相同的结果
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.newSource = func() normal.Uniform {
			return rand.New(rand.NewSource(seed))
		}
	}
}

// WithSource 自定义随机源工厂
func WithSource(f SourceFactory) Option {
	return func(s *Simulator) {
		s.newSource = f
	}
}

var seedCounter atomic.Int64

// NewSimulator 创建模拟器，默认每次调用使用不同的时间种子
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		newSource: func() normal.Uniform {
			seed := time.Now().UnixNano() + seedCounter.Add(1)
			return rand.New(rand.NewSource(seed))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate 运行一次完整模拟，要么返回完整结果，要么返回错误
func (s *Simulator) Simulate(p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	sampler := normal.NewSampler(s.newSource())
	scenarios := generateScenarios(p, sampler)
	sort.Float64s(scenarios)

	n := len(scenarios)
	rank := quantileRank(p.ConfidenceLevel, n)
	varValue := -scenarios[rank]

	expected := ExpectedPnL(p.PortfolioValue, p.HorizonDays)
	var sum, sqDev float64
	for _, v := range scenarios {
		sum += v
		d := v - expected
		sqDev += d * d
	}

	// 尾部平均损失
	es := varValue
	if rank > 0 {
		var tail float64
		for _, v := range scenarios[:rank] {
			tail += v
		}
		es = -tail / float64(rank)
	}

	return Result{
		VaR:               varValue,
		Mean:              sum / float64(n),
		StdDev:            math.Sqrt(sqDev / float64(n)),
		ExpectedShortfall: es,
		Histogram:         buildHistogram(scenarios, HistogramBins),
		Tickers:           append([]string(nil), p.Tickers...),
	}, nil
}

// Outcome 异步模拟的结果
type Outcome struct {
	Result Result
	Err    error
}

// SimulateAsync 在独立 goroutine 中运行模拟，调用方不阻塞
//
// 返回的 channel 恰好收到一个 Outcome 后关闭。
// 模拟一旦开始就会跑完，不支持中途取消。
func (s *Simulator) SimulateAsync(p Params) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := s.Simulate(p)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}

// ExpectedPnL 确定性期望损益 P·μ_d·h
func ExpectedPnL(portfolioValue float64, horizonDays int) float64 {
	return portfolioValue * DailyReturn * float64(horizonDays)
}

// Validate 在模拟开始前检查参数
func (p Params) Validate() error {
	if p.PortfolioValue <= 0 || math.IsNaN(p.PortfolioValue) || math.IsInf(p.PortfolioValue, 0) {
		return fmt.Errorf("%w: portfolio_value must be a finite number > 0, got %v", ErrInvalidParams, p.PortfolioValue)
	}
	if p.PortfolioValue > MaxPortfolioValue {
		return fmt.Errorf("%w: portfolio_value must be <= %g, got %v", ErrInvalidParams, MaxPortfolioValue, p.PortfolioValue)
	}
	if p.HorizonDays < 0 || p.HorizonDays > MaxHorizonDays {
		return fmt.Errorf("%w: horizon_days must be in [0, %d], got %d", ErrInvalidParams, MaxHorizonDays, p.HorizonDays)
	}
	if !(p.ConfidenceLevel > 0 && p.ConfidenceLevel < 1) {
		return fmt.Errorf("%w: confidence_level must be in (0,1), got %v", ErrInvalidParams, p.ConfidenceLevel)
	}
	if p.Simulations < 1 {
		return fmt.Errorf("%w: simulations must be >= 1, got %d", ErrInvalidParams, p.Simulations)
	}
	if p.Simulations > MaxSimulations {
		return fmt.Errorf("%w: simulations must be <= %d, got %d", ErrInvalidParams, MaxSimulations, p.Simulations)
	}
	return nil
}

// generateScenarios 生成 n 个情景损益
func generateScenarios(p Params, sampler *normal.Sampler) []float64 {
	h := float64(p.HorizonDays)
	drift := p.PortfolioValue * DailyReturn * h
	scale := p.PortfolioValue * DailyVolatility * math.Sqrt(h)

	out := make([]float64, p.Simulations)
	for i := range out {
		out[i] = drift + scale*sampler.Next()
	}
	return out
}

// quantileRank 下尾分位点下标 floor((1-c)·n)，截断到 [0, n-1]
func quantileRank(confidence float64, n int) int {
	rank := int(math.Floor((1 - confidence) * float64(n)))
	if rank >= n {
		rank = n - 1
	}
	if rank < 0 {
		rank = 0
	}
	return rank
}
