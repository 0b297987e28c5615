// Package scoring computes sex- and bodyweight-adjusted strength scores.
package scoring

import (
	"math"

	"github.com/openlift/ironstats/internal/domain/model"
)

// DOTS denominator coefficients, published by the IPF working group.
// The score is lift * 500 / (a + b*bw + c*bw^2 + d*bw^3 + e*bw^4).
const (
	menA = -307.75076
	menB = 24.0900756
	menC = -0.1918759221
	menD = 0.0007391293
	menE = -0.000001093

	womenA = -57.96288
	womenB = 13.6175032
	womenC = -0.1126655495
	womenD = 0.0005158568
	womenE = -0.0000010706
)

// Bodyweight clamp bounds used by the reference DOTS tables.
const (
	menMinBW   = 40.0
	menMaxBW   = 210.0
	womenMinBW = 40.0
	womenMaxBW = 150.0
)

// Dots returns the DOTS score for a single lift (or total). Returns 0
// for non-positive inputs so invalid rows never produce a spurious score.
func Dots(sex model.Sex, bodyweight, lift float64) float64 {
	if lift <= 0 || bodyweight <= 0 {
		return 0
	}
	var a, b, c, d, e float64
	switch sex {
	case model.SexFemale:
		bodyweight = clamp(bodyweight, womenMinBW, womenMaxBW)
		a, b, c, d, e = womenA, womenB, womenC, womenD, womenE
	default:
		bodyweight = clamp(bodyweight, menMinBW, menMaxBW)
		a, b, c, d, e = menA, menB, menC, menD, menE
	}
	denom := a + bodyweight*(b+bodyweight*(c+bodyweight*(d+bodyweight*e)))
	if denom <= 0 || math.IsNaN(denom) {
		return 0
	}
	return lift * 500 / denom
}

// Linear-denominator coefficients obtained by fitting the DOTS
// denominator over common competition bodyweights (60-140kg men,
// 45-100kg women).
const (
	menApproxA   = 352.0
	menApproxB   = 4.0
	womenApproxA = 197.0
	womenApproxB = 4.0
)

// ApproxDots is the simplified linear approximation of Dots used by the
// SQL competitive-position query, where it is expressed inline as
// arithmetic over columns. It intentionally diverges from Dots: the
// precise rational polynomial is kept for precomputed columns and the
// visualization path, while position estimation trades accuracy for a
// trivially inlinable SQL expression.
func ApproxDots(sex model.Sex, bodyweight, lift float64) float64 {
	if lift <= 0 || bodyweight <= 0 {
		return 0
	}
	a, b := ApproxCoefficients(sex)
	return lift * 500 / (a + b*bodyweight)
}

// ApproxCoefficients exposes the linear coefficients so the SQL engine
// can embed the same approximation inside a query expression.
func ApproxCoefficients(sex model.Sex) (a, b float64) {
	if sex == model.SexFemale {
		return womenApproxA, womenApproxB
	}
	return menApproxA, menApproxB
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
