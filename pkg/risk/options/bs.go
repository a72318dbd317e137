// 文件: pkg/risk/options/bs.go
// 欧式期权 Black-Scholes 定价 (无分红)

package options

import (
	"errors"
	"fmt"
	"math"

	"quant.com/pkg/risk/normal"
)

var (
	// 错误信息，针对无效输入
	ErrInvalidInputs = errors.New("invalid inputs")

	// 隐含波动率牛顿迭代不收敛
	ErrNoConvergence = errors.New("failed to converge to implied volatility")
)

// Params 定价参数
type Params struct {
	Spot       float64 `json:"spot"`       // S: 标的现价
	Strike     float64 `json:"strike"`     // K: 执行价
	Expiry     float64 `json:"expiry"`     // T: 剩余到期时间 (年)
	Rate       float64 `json:"rate"`       // r: 无风险利率 (连续复利，可以为负)
	Volatility float64 `json:"volatility"` // σ: 年化波动率
}

// Result 定价结果
type Result struct {
	D1   float64 `json:"d1"`
	D2   float64 `json:"d2"`
	Call float64 `json:"call"`
	Put  float64 `json:"put"`
}

// Price 计算 d1、d2 以及看涨/看跌价格
//
//	d1   = [ln(S/K) + (r + σ²/2)T] / (σ√T)
//	d2   = d1 - σ√T
//	call = S·N(d1) - K·e^{-rT}·N(d2)
//	put  = K·e^{-rT}·N(-d2) - S·N(-d1)
//
// T=0 或 σ=0 时 d1 分母为零，直接拒绝，不返回看似合理的数字。
func Price(p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	S, K, r, sigma, T := p.Spot, p.Strike, p.Rate, p.Volatility, p.Expiry
	d1 := calcD1(S, K, r, sigma, T)
	d2 := d1 - sigma*math.Sqrt(T)
	df := math.Exp(-r * T)

	return Result{
		D1:   d1,
		D2:   d2,
		Call: S*normal.CDF(d1) - K*df*normal.CDF(d2),
		Put:  K*df*normal.CDF(-d2) - S*normal.CDF(-d1),
	}, nil
}

// Validate 检查定价参数
func (p Params) Validate() error {
	return validateBSInputs(p.Spot, p.Strike, p.Rate, p.Volatility, p.Expiry)
}

// PriceCallBS 计算欧式看涨期权（Call）的价格
// S: 现价, K: 执行价, r: 无风险利率, sigma: 波动率, T: 到期时间(年)
func PriceCallBS(S, K, r, sigma, T float64) (float64, error) {
	res, err := Price(Params{Spot: S, Strike: K, Expiry: T, Rate: r, Volatility: sigma})
	if err != nil {
		return 0, err
	}
	return res.Call, nil
}

// PricePutBS 计算欧式看跌期权（Put）的价格
func PricePutBS(S, K, r, sigma, T float64) (float64, error) {
	res, err := Price(Params{Spot: S, Strike: K, Expiry: T, Rate: r, Volatility: sigma})
	if err != nil {
		return 0, err
	}
	return res.Put, nil
}

// ImpliedVolatility 通过看涨期权市场价格反推隐含波动率 (牛顿法)
func ImpliedVolatility(S, K, r, marketPrice, T float64) (float64, error) {
	if marketPrice <= 0 || math.IsNaN(marketPrice) || math.IsInf(marketPrice, 0) {
		return 0, fmt.Errorf("%w: market price %v", ErrInvalidInputs, marketPrice)
	}

	// 初始猜测波动率，通常从 20% 开始
	sigma := 0.2
	tolerance := 1e-6
	maxIterations := 100

	for i := 0; i < maxIterations; i++ {
		optionPrice, err := PriceCallBS(S, K, r, sigma, T)
		if err != nil {
			return 0, err
		}

		vega, err := Vega(S, K, r, sigma, T)
		if err != nil {
			return 0, err
		}

		priceError := marketPrice - optionPrice
		if math.Abs(priceError) < tolerance {
			return sigma, nil
		}
		// Vega 太小时牛顿步会发散
		if vega < 1e-10 {
			break
		}

		sigma += priceError / vega
		if sigma <= 0 {
			sigma = 1e-4
		}
	}

	return 0, ErrNoConvergence
}

// Scenario 情景分析结果
type Scenario struct {
	Spot       float64 `json:"spot"`
	Volatility float64 `json:"volatility"`
	Call       float64 `json:"call"`
	Put        float64 `json:"put"`
}

// ScenarioAnalysis 模拟标的价格和波动率冲击后的期权价格
// priceChange: 价格变化比例，例如 0.05 表示上涨 5%，-0.05 表示下跌 5%
// volChange: 波动率变化比例
func ScenarioAnalysis(p Params, priceChange, volChange float64) (Scenario, error) {
	shocked := p
	shocked.Spot = p.Spot * (1 + priceChange)
	shocked.Volatility = p.Volatility * (1 + volChange)

	res, err := Price(shocked)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario (price %+.2f%%, vol %+.2f%%): %w",
			priceChange*100, volChange*100, err)
	}
	return Scenario{
		Spot:       shocked.Spot,
		Volatility: shocked.Volatility,
		Call:       res.Call,
		Put:        res.Put,
	}, nil
}

// validateBSInputs 检查 Black-Scholes 输入的有效性
func validateBSInputs(S, K, r, sigma, T float64) error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"spot", S}, {"strike", K}, {"rate", r}, {"volatility", sigma}, {"expiry", T}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInputs, f.name, f.v)
		}
	}
	// 当前标的价格和执行价必须大于零
	if S <= 0 {
		return fmt.Errorf("%w: spot must be > 0, got %v", ErrInvalidInputs, S)
	}
	if K <= 0 {
		return fmt.Errorf("%w: strike must be > 0, got %v", ErrInvalidInputs, K)
	}
	// σ=0 或 T=0 会让 d1 除零
	if sigma <= 0 {
		return fmt.Errorf("%w: volatility must be > 0, got %v", ErrInvalidInputs, sigma)
	}
	if T <= 0 {
		return fmt.Errorf("%w: expiry must be > 0, got %v", ErrInvalidInputs, T)
	}
	return nil
}

// calcD1 计算 Black-Scholes 公式中的 d1
func calcD1(S, K, r, sigma, T float64) float64 {
	return (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
}
