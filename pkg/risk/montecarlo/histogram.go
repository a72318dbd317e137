// 文件: pkg/risk/montecarlo/histogram.go

package montecarlo

import "math"

// buildHistogram 把已升序排序的情景划分到 bins 个等宽桶
//
// width = (max-min)/bins
// idx   = min(floor((v-min)/width), bins-1)
//
// 截断到 bins-1 保证最大值落在最后一个桶。
// max == min 时宽度为 0，全部计入第 0 个桶。
func buildHistogram(sorted []float64, bins int) []Bin {
	hist := make([]Bin, bins)
	if len(sorted) == 0 {
		return hist
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	width := (hi - lo) / float64(bins)
	for i := range hist {
		hist[i].RangeStart = lo + float64(i)*width
	}

	if width == 0 {
		hist[0].Count = len(sorted)
		return hist
	}

	for _, v := range sorted {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		hist[idx].Count++
	}
	return hist
}
