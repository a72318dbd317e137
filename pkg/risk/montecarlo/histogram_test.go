package montecarlo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildHistogram_MaxFallsInLastBin(t *testing.T) {
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	hist := buildHistogram(vals, 5)

	counts := make([]int, len(hist))
	for i, b := range hist {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{2, 2, 2, 2, 3}, counts)
	assert.Equal(t, 0.0, hist[0].RangeStart)
	assert.Equal(t, 8.0, hist[4].RangeStart)
}

func TestBuildHistogram_Degenerate(t *testing.T) {
	hist := buildHistogram([]float64{3, 3, 3}, HistogramBins)
	assert.Len(t, hist, HistogramBins)
	assert.Equal(t, 3, hist[0].Count)
	for _, b := range hist[1:] {
		assert.Zero(t, b.Count)
		assert.Equal(t, 3.0, b.RangeStart)
	}
}

func TestBuildHistogram_Empty(t *testing.T) {
	hist := buildHistogram(nil, 4)
	assert.Len(t, hist, 4)
	assert.Equal(t, 0, sumCounts(hist))
}

func TestParseTickers(t *testing.T) {
	assert.Equal(t, []string{"SPY", "BND", "GLD"}, ParseTickers(" SPY, BND,,GLD ,"))
	assert.Equal(t, DefaultTickers, ParseTickers(""))
	assert.Equal(t, DefaultTickers, ParseTickers(" , ,"))

	// 返回副本，修改不影响默认值
	got := ParseTickers("")
	got[0] = "X"
	assert.Equal(t, "SPY", DefaultTickers[0])
}
