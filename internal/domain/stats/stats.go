// Package stats provides percentile and histogram primitives over value
// columns. All functions treat non-finite and non-positive values as
// absent, matching the dataset's validity rules.
package stats

import (
	"math"
	"sort"
)

func valid(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && x == x
}

// PercentileRank returns the percentile of value within column: the
// rounded share of valid entries strictly below it. ok is false when
// the column has no valid entries.
func PercentileRank(column []float64, value float64) (float64, bool) {
	var below, total int
	for _, x := range column {
		if !valid(x) {
			continue
		}
		total++
		if x < value {
			below++
		}
	}
	if total == 0 {
		return 0, false
	}
	return math.Round(100 * float64(below) / float64(total)), true
}

// PercentileRanks is the batch variant: the valid-value extraction is
// amortized across all queried values. Result slots are nil when the
// column has no valid entries.
func PercentileRanks(column []float64, values []float64) []*float64 {
	sorted := validSorted(column)
	out := make([]*float64, len(values))
	if len(sorted) == 0 {
		return out
	}
	for i, v := range values {
		below := sort.SearchFloat64s(sorted, v)
		p := math.Round(100 * float64(below) / float64(len(sorted)))
		out[i] = &p
	}
	return out
}

// Quantile returns the q-th quantile (0..1) of the valid values using
// linear interpolation between closest ranks. ok is false on an empty
// valid set or an out-of-range q.
func Quantile(column []float64, q float64) (float64, bool) {
	if q < 0 || q > 1 {
		return 0, false
	}
	sorted := validSorted(column)
	if len(sorted) == 0 {
		return 0, false
	}
	if len(sorted) == 1 {
		return sorted[0], true
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, true
}

// Quantiles evaluates several quantiles over one shared sorted extraction.
func Quantiles(column []float64, qs []float64) ([]float64, bool) {
	sorted := validSorted(column)
	if len(sorted) == 0 {
		return nil, false
	}
	out := make([]float64, len(qs))
	for i, q := range qs {
		if q < 0 || q > 1 {
			out[i] = math.NaN()
			continue
		}
		pos := q * float64(len(sorted)-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if lo == hi {
			out[i] = sorted[lo]
			continue
		}
		frac := pos - float64(lo)
		out[i] = sorted[lo]*(1-frac) + sorted[hi]*frac
	}
	return out, true
}

func validSorted(column []float64) []float64 {
	out := make([]float64, 0, len(column))
	for _, x := range column {
		if valid(x) {
			out = append(out, x)
		}
	}
	sort.Float64s(out)
	return out
}
