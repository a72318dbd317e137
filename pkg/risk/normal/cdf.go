// 文件: pkg/risk/normal/cdf.go
// 标准正态分布的 CDF / PDF
//
// 期权定价和 VaR 模拟共用的数值原语。

package normal

import "math"

// Zelen & Severo (Abramowitz-Stegun 26.2.17) 多项式系数
const (
	p  = 0.2316419
	b1 = 0.319381530
	b2 = -0.356563782
	b3 = 1.781477937
	b4 = -1.821255978
	b5 = 1.330274429
)

var invSqrt2Pi = 1.0 / math.Sqrt(2*math.Pi)

// CDF 标准正态累计分布函数 Φ(x) 的近似，绝对误差约 7.5e-8
//
// 只对 |x| 计算尾部概率 q，再按 x 的符号折叠：
// x >= 0 返回 1-q，x < 0 返回 q。
// 这样 Φ(-x) = 1 - Φ(x) 严格成立，Φ(0) 直接返回 0.5。
//
// 注意：调用方不能传入 NaN / Inf。
func CDF(x float64) float64 {
	if x == 0 {
		return 0.5
	}
	ax := math.Abs(x)
	t := 1.0 / (1.0 + p*ax)
	poly := t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))
	q := PDF(ax) * poly
	if x > 0 {
		return 1.0 - q
	}
	return q
}

// PDF 标准正态概率密度函数 φ(x)
func PDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}
