package stats

import "math"

// Hist is a fixed-width binning over a value slice. Edges always has
// len(Counts)+1 entries; the sum of Counts equals the number of finite
// inputs binned.
type Hist struct {
	Edges  []float64
	Counts []int
	Min    float64
	Max    float64
}

// Histogram bins values into binCount equal-width buckets between the
// observed min and max. Non-finite values are skipped. An empty or
// all-invalid input yields a zero-value Hist rather than an error, so
// downstream serialization stays total.
func Histogram(values []float64, binCount int) Hist {
	if binCount < 1 {
		binCount = 1
	}
	lo, hi, ok := MinMax(values)
	if !ok {
		return Hist{Edges: []float64{}, Counts: []int{}}
	}

	h := Hist{
		Edges:  make([]float64, binCount+1),
		Counts: make([]int, binCount),
		Min:    lo,
		Max:    hi,
	}
	width := (hi - lo) / float64(binCount)
	for i := 0; i <= binCount; i++ {
		h.Edges[i] = lo + width*float64(i)
	}
	h.Edges[binCount] = hi // avoid drift on the last edge

	for _, x := range values {
		if x != x || math.IsInf(x, 0) {
			continue
		}
		idx := 0
		if width > 0 {
			idx = int((x - lo) / width)
		}
		// The max value lands exactly on the top edge; clamp it into
		// the last bucket so counts stay conserved.
		if idx >= binCount {
			idx = binCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Counts[idx]++
	}
	return h
}
