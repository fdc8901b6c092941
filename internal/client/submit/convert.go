package submit

import "math"

// Scaling between human inputs and on-chain integer representations.
// Both conversions round half away from zero (math.Round), the single
// rounding rule used everywhere so chain and backend representations
// never diverge by more than one unit.

// Grams converts a decimal kilogram quantity to integer grams.
func Grams(kg float64) uint64 {
	return uint64(math.Round(kg * 1000))
}

// MicroDegrees converts a degree coordinate to fixed-point E6.
func MicroDegrees(deg float64) int64 {
	return int64(math.Round(deg * 1e6))
}

// Degrees converts a fixed-point E6 coordinate back to degrees.
func Degrees(e6 int64) float64 {
	return float64(e6) / 1e6
}
