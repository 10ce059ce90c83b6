// Package floatutils provides utilities for working with floats
package floatutils

import "math"

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// Sign returns -1 for negative values, +1 for positive values, and 0
// for 0.
func Sign(value float64) float64 {
	switch {
	case value > 0:
		return 1.0
	case value < 0:
		return -1.0
	}
	return 0.0
}

// IsFinite returns whether value is neither NaN nor ±Inf
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
