package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileRank(t *testing.T) {
	column := []float64{100, 150, 200, 250, 300}

	p, ok := PercentileRank(column, 200)
	require.True(t, ok)
	assert.Equal(t, 40.0, p)

	p, ok = PercentileRank(column, 50)
	require.True(t, ok)
	assert.Equal(t, 0.0, p)

	p, ok = PercentileRank(column, 350)
	require.True(t, ok)
	assert.Equal(t, 100.0, p)
}

func TestPercentileRankEmpty(t *testing.T) {
	_, ok := PercentileRank(nil, 10)
	assert.False(t, ok)

	// Non-finite and non-positive values are not a population.
	_, ok = PercentileRank([]float64{0, -5, math.NaN(), math.Inf(1)}, 10)
	assert.False(t, ok)
}

func TestPercentileRankSkipsInvalid(t *testing.T) {
	column := []float64{100, math.NaN(), 200, -1, 300, math.Inf(1)}
	p, ok := PercentileRank(column, 250)
	require.True(t, ok)
	assert.Equal(t, 67.0, p) // 2 of 3 valid below, rounded
}

func TestPercentileRankMonotonic(t *testing.T) {
	column := []float64{12, 99, 4, 56, 70, 70, 3, 150, 42}
	prev := -1.0
	for v := 0.0; v <= 200; v += 0.5 {
		p, ok := PercentileRank(column, v)
		require.True(t, ok)
		assert.GreaterOrEqual(t, p, prev, "rank must not decrease at v=%v", v)
		prev = p
	}
}

func TestPercentileRanksBatch(t *testing.T) {
	column := []float64{100, 150, 200, 250, 300}
	out := PercentileRanks(column, []float64{200, 50, 350})
	require.Len(t, out, 3)
	require.NotNil(t, out[0])
	assert.Equal(t, 40.0, *out[0])
	assert.Equal(t, 0.0, *out[1])
	assert.Equal(t, 100.0, *out[2])

	empty := PercentileRanks(nil, []float64{1, 2})
	assert.Nil(t, empty[0])
	assert.Nil(t, empty[1])
}

func TestQuantile(t *testing.T) {
	column := []float64{1, 2, 3, 4}

	q, ok := Quantile(column, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 2.5, q, 1e-12)

	q, ok = Quantile(column, 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, q)

	q, ok = Quantile(column, 1)
	require.True(t, ok)
	assert.Equal(t, 4.0, q)

	_, ok = Quantile(column, 1.5)
	assert.False(t, ok)
	_, ok = Quantile(nil, 0.5)
	assert.False(t, ok)
}

func TestQuantiles(t *testing.T) {
	column := []float64{10, 20, 30, 40, 50}
	out, ok := Quantiles(column, []float64{0.25, 0.5, 0.75})
	require.True(t, ok)
	assert.InDelta(t, 20.0, out[0], 1e-12)
	assert.InDelta(t, 30.0, out[1], 1e-12)
	assert.InDelta(t, 40.0, out[2], 1e-12)
}

func TestMinMax(t *testing.T) {
	lo, hi, ok := MinMax([]float64{5, 1, 9, 3, 7, 2, 8, 4, 6})
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 9.0, hi)

	// Short slices exercise the scalar tail.
	lo, hi, ok = MinMax([]float64{3})
	require.True(t, ok)
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 3.0, hi)

	_, _, ok = MinMax(nil)
	assert.False(t, ok)
	_, _, ok = MinMax([]float64{math.NaN(), math.Inf(1), math.Inf(-1)})
	assert.False(t, ok)
}

func TestMinMaxSkipsNonFinite(t *testing.T) {
	lo, hi, ok := MinMax([]float64{math.NaN(), 4, math.Inf(-1), 2, 8, math.Inf(1)})
	require.True(t, ok)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 8.0, hi)
}

func TestHistogramConservation(t *testing.T) {
	values := []float64{1, 2, 2, 3, 5, 8, 13, 21, 34, 55}
	for _, bins := range []int{1, 2, 3, 7, 10, 50} {
		h := Histogram(values, bins)
		require.Len(t, h.Edges, bins+1)
		require.Len(t, h.Counts, bins)
		sum := 0
		for _, c := range h.Counts {
			sum += c
		}
		assert.Equal(t, len(values), sum, "bins=%d", bins)
	}
}

func TestHistogramEdges(t *testing.T) {
	h := Histogram([]float64{0, 10}, 5)
	assert.Equal(t, 0.0, h.Min)
	assert.Equal(t, 10.0, h.Max)
	assert.Equal(t, 0.0, h.Edges[0])
	assert.Equal(t, 10.0, h.Edges[5])
	// Max value lands in the last bucket, not past it.
	assert.Equal(t, 1, h.Counts[4])
}

func TestHistogramEmpty(t *testing.T) {
	h := Histogram(nil, 10)
	assert.Empty(t, h.Edges)
	assert.Empty(t, h.Counts)
	assert.Equal(t, 0.0, h.Min)
	assert.Equal(t, 0.0, h.Max)
}

func TestHistogramSingleValue(t *testing.T) {
	// Zero-width range: everything falls into bucket 0.
	h := Histogram([]float64{7, 7, 7}, 4)
	sum := 0
	for _, c := range h.Counts {
		sum += c
	}
	assert.Equal(t, 3, sum)
	assert.Equal(t, 3, h.Counts[0])
}
