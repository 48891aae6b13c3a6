// Package calculator implements the amortization engine: a banker's rounding
// primitive and the payment recurrence built on top of it.
package calculator

import "math"

// maxExactInteger is 2^52: every float64 at or above it is a whole number.
const maxExactInteger = 1 << 52

// Round rounds value to the given number of fractional digits using
// round-half-to-even at the target digit.
//
// The value is scaled two digits past the target precision and then reduced by
// one order with ordinary rounding. The extra digit absorbs binary
// representation error (0.135 is stored as 0.13500000000000000888), so the
// tie decision is made on a clean digit. A consequence is that anything two
// digits past the target is treated as noise: Round(0.0345, 2) sees the tie
// 0.035 and returns 0.04.
//
// Negative digits are treated as zero. NaN and infinities are returned
// unchanged, as are values with no fractional part at the requested precision
// (value*10^digits at or above 2^52, or digits beyond the float64 range).
func Round(value float64, digits int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	if digits < 0 {
		digits = 0
	}
	if value < 0 {
		rounded := -Round(-value, digits)
		if rounded == 0 {
			return 0
		}
		return rounded
	}

	scale := math.Pow10(digits + 2)
	if math.IsInf(scale, 0) || value >= maxExactInteger/math.Pow10(digits) {
		return value
	}

	intermediate := math.Round(value * scale / 10)

	var rounded float64
	if math.Mod(intermediate, 10) == 5 {
		rounded = math.Floor(intermediate / 10)
		if math.Mod(rounded, 2) == 1 {
			rounded++
		}
	} else {
		rounded = math.Round(intermediate / 10)
	}

	return rounded / math.Pow10(digits)
}

// RoundCents is Round(value, 2).
func RoundCents(value float64) float64 {
	return Round(value, 2)
}
