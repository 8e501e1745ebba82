package utils

import "math"

type Number interface {
	int | int8 | int16 | int32 | int64 | float32 | float64
}

func Clamp[T Number](val, lo, hi T) T {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func Abs[T Number](val T) T {
	if val < 0 {
		return -val
	}
	return val
}

// FloorInt floors val and converts it to int, saturating at math.MinInt and math.MaxInt. NaN
// becomes 0.
func FloorInt(val float64) int {
	switch {
	case math.IsNaN(val):
		return 0
	case val >= math.MaxInt:
		return math.MaxInt
	case val <= math.MinInt:
		return math.MinInt
	}
	return int(math.Floor(val))
}

// IsPositive reports whether every value is finite and greater than zero.
func IsPositive(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return true
}

// IsFinite reports whether no value is NaN or infinite.
func IsFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
