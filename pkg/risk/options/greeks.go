// 文件: pkg/risk/options/greeks.go
// 欧式期权 Greeks
//
// Delta: 标的价格变动 1 单位时期权价格的变动量
// Gamma: 标的价格变动 1 单位时 Delta 的变动量
// Vega:  波动率变动 1 单位时期权价格的变动量
// Theta: 剩余到期时间流逝时期权价格的变动量 (按年)
// Rho:   利率变动 1 单位时期权价格的变动量

package options

import (
	"math"

	"quant.com/pkg/risk/normal"
)

// Greeks 一组敏感度指标
type Greeks struct {
	DeltaCall float64 `json:"delta_call"`
	DeltaPut  float64 `json:"delta_put"`
	Gamma     float64 `json:"gamma"`
	Vega      float64 `json:"vega"`
	ThetaCall float64 `json:"theta_call"`
	RhoCall   float64 `json:"rho_call"`
}

// ComputeGreeks 一次性计算全部 Greeks
func ComputeGreeks(p Params) (Greeks, error) {
	if err := p.Validate(); err != nil {
		return Greeks{}, err
	}
	S, K, r, sigma, T := p.Spot, p.Strike, p.Rate, p.Volatility, p.Expiry
	sqrtT := math.Sqrt(T)
	d1 := calcD1(S, K, r, sigma, T)
	d2 := d1 - sigma*sqrtT
	df := math.Exp(-r * T)

	return Greeks{
		DeltaCall: normal.CDF(d1),
		DeltaPut:  normal.CDF(d1) - 1,
		Gamma:     normal.PDF(d1) / (S * sigma * sqrtT),
		Vega:      S * sqrtT * normal.PDF(d1),
		ThetaCall: -S*normal.PDF(d1)*sigma/(2*sqrtT) - r*K*df*normal.CDF(d2),
		RhoCall:   K * T * df * normal.CDF(d2),
	}, nil
}

// DeltaCall 计算欧式看涨期权的 Delta
func DeltaCall(S, K, r, sigma, T float64) (float64, error) {
	if err := validateBSInputs(S, K, r, sigma, T); err != nil {
		return 0, err
	}
	return normal.CDF(calcD1(S, K, r, sigma, T)), nil
}

// DeltaPut 计算欧式看跌期权的 Delta
func DeltaPut(S, K, r, sigma, T float64) (float64, error) {
	d, err := DeltaCall(S, K, r, sigma, T)
	if err != nil {
		return 0, err
	}
	return d - 1, nil
}

// Gamma 计算欧式期权的 Gamma (看涨看跌相同)
func Gamma(S, K, r, sigma, T float64) (float64, error) {
	if err := validateBSInputs(S, K, r, sigma, T); err != nil {
		return 0, err
	}
	d1 := calcD1(S, K, r, sigma, T)
	return normal.PDF(d1) / (S * sigma * math.Sqrt(T)), nil
}

// Vega 计算欧式期权的 Vega
func Vega(S, K, r, sigma, T float64) (float64, error) {
	if err := validateBSInputs(S, K, r, sigma, T); err != nil {
		return 0, err
	}
	d1 := calcD1(S, K, r, sigma, T)
	return S * math.Sqrt(T) * normal.PDF(d1), nil
}

// ThetaCall 计算欧式看涨期权的 Theta
func ThetaCall(S, K, r, sigma, T float64) (float64, error) {
	if err := validateBSInputs(S, K, r, sigma, T); err != nil {
		return 0, err
	}
	d1 := calcD1(S, K, r, sigma, T)
	d2 := d1 - sigma*math.Sqrt(T)

	theta := -S*normal.PDF(d1)*sigma/(2*math.Sqrt(T)) - r*K*math.Exp(-r*T)*normal.CDF(d2)
	return theta, nil
}

// RhoCall 计算欧式看涨期权的 Rho
func RhoCall(S, K, r, sigma, T float64) (float64, error) {
	if err := validateBSInputs(S, K, r, sigma, T); err != nil {
		return 0, err
	}
	d2 := calcD1(S, K, r, sigma, T) - sigma*math.Sqrt(T)
	return K * T * math.Exp(-r*T) * normal.CDF(d2), nil
}
