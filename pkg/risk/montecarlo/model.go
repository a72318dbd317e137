// 文件: pkg/risk/montecarlo/model.go
// 蒙特卡洛 VaR 的输入输出模型

package montecarlo

import (
	"errors"
	"strings"
)

// 组合收益模型常量
//
// 所有 ticker 共用同一个合成的日收益分布，ticker 只是展示用标签，
// 不参与收益计算。
const (
	DailyReturn     = 0.0003 // 日预期收益率 μ_d
	DailyVolatility = 0.008  // 日波动率 σ_d
	HistogramBins   = 50     // 直方图桶数
)

var (
	ErrInvalidParams = errors.New("invalid var params")

	// DefaultTickers 未自定义组合时使用的默认标签
	DefaultTickers = []string{"SPY", "BND", "GLD", "QQQ", "VTI"}

	// ConfidenceLevels 常用置信度 (边界层下拉框的选项)
	// Simulate 本身接受 (0,1) 内任意值
	ConfidenceLevels = []float64{0.90, 0.95, 0.99}
)

// Params VaR 模拟参数
type Params struct {
	PortfolioValue  float64  `json:"portfolio_value"`  // 组合市值 (货币单位)
	HorizonDays     int      `json:"horizon_days"`     // 持有期 (天)
	ConfidenceLevel float64  `json:"confidence_level"` // 置信度，例如 0.95
	Simulations     int      `json:"simulations"`      // 模拟次数，例如 10000
	Tickers         []string `json:"tickers"`          // 组合标签，仅用于展示
}

// DefaultParams 默认参数：100 万组合、20 天、95%、1 万次
func DefaultParams() Params {
	return Params{
		PortfolioValue:  1_000_000,
		HorizonDays:     20,
		ConfidenceLevel: 0.95,
		Simulations:     10_000,
		Tickers:         append([]string(nil), DefaultTickers...),
	}
}

// Bin 直方图的一个桶，覆盖 [RangeStart, RangeStart+width)
// 最后一个桶是闭区间，包含最大值
type Bin struct {
	RangeStart float64 `json:"range_start"`
	Count      int     `json:"count"`
}

// Result 一次模拟的输出
type Result struct {
	// VaR: 以正数表示的损失金额
	VaR float64 `json:"var"`

	// Mean: 情景损益均值
	Mean float64 `json:"mean"`

	// StdDev: 情景损益围绕确定性期望 P·μ_d·h 的离散度 (总体口径)
	// 注意不是围绕样本均值的样本标准差
	StdDev float64 `json:"std_dev"`

	// ExpectedShortfall: VaR 分位点以下情景的平均损失 (正数)
	// 分位点下标为 0 时尾部为空，取 VaR 本身
	ExpectedShortfall float64 `json:"expected_shortfall"`

	// Histogram: 固定 50 个等宽桶，覆盖 [min, max]
	Histogram []Bin `json:"histogram"`

	// Tickers: 原样回显的组合标签
	Tickers []string `json:"tickers"`
}

// ParseTickers 解析逗号分隔的 ticker 输入
// "SPY, BND,,GLD" -> [SPY BND GLD]；没有有效项时返回默认组合
func ParseTickers(input string) []string {
	var out []string
	for _, t := range strings.Split(input, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultTickers...)
	}
	return out
}
