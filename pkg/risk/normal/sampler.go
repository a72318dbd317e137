// 文件: pkg/risk/normal/sampler.go
// Box-Muller 标准正态采样器

package normal

import (
	"math"
	"math/rand"
)

// Uniform 均匀分布随机源，返回 [0, 1) 区间的值
// *rand.Rand 天然满足该接口
type Uniform interface {
	Float64() float64
}

// Sampler 标准正态采样器
//
// 每次 Next() 消耗两个均匀随机数:
//
//	z = sqrt(-2 * ln(u1)) * cos(2π * u2)
//
// 非并发安全：每个模拟调用持有自己的 Sampler。
type Sampler struct {
	src Uniform
}

// NewSampler 使用给定随机源创建采样器
func NewSampler(src Uniform) *Sampler {
	return &Sampler{src: src}
}

// NewSeededSampler 使用固定种子创建采样器 (同一种子产生同一序列)
func NewSeededSampler(seed int64) *Sampler {
	return NewSampler(rand.New(rand.NewSource(seed)))
}

// Next 产生一个标准正态分布的随机数
func (s *Sampler) Next() float64 {
	// u1 == 0 时 ln(0) = -Inf，必须重新抽样
	u1 := s.src.Float64()
	for u1 <= 0 {
		u1 = s.src.Float64()
	}
	u2 := s.src.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
