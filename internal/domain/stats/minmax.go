package stats

import "math"

// Kernel implementations are held in variables so an architecture file
// can swap in a vectorized build later without touching call sites.
var minMaxImpl = minMax4

// MinMax returns the minimum and maximum of v, skipping NaN/Inf.
// ok is false when v holds no finite value.
func MinMax(v []float64) (lo, hi float64, ok bool) {
	return minMaxImpl(v)
}

// minMax4 reduces four independent accumulator lanes and merges them at
// the end, the same shape the assembly kernels use.
func minMax4(v []float64) (float64, float64, bool) {
	lo := [4]float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [4]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1), math.Inf(-1)}

	i := 0
	for ; i+4 <= len(v); i += 4 {
		for lane := 0; lane < 4; lane++ {
			x := v[i+lane]
			if x != x || math.IsInf(x, 0) {
				continue
			}
			if x < lo[lane] {
				lo[lane] = x
			}
			if x > hi[lane] {
				hi[lane] = x
			}
		}
	}
	for ; i < len(v); i++ {
		x := v[i]
		if x != x || math.IsInf(x, 0) {
			continue
		}
		if x < lo[0] {
			lo[0] = x
		}
		if x > hi[0] {
			hi[0] = x
		}
	}

	outLo, outHi := lo[0], hi[0]
	for lane := 1; lane < 4; lane++ {
		if lo[lane] < outLo {
			outLo = lo[lane]
		}
		if hi[lane] > outHi {
			outHi = hi[lane]
		}
	}
	if math.IsInf(outLo, 1) {
		return 0, 0, false
	}
	return outLo, outHi, true
}
