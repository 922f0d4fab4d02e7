// Package xmath collects the small numeric helpers the carver leans on
// throughout the hot loops: bounds clamping, absolute value and membership
// tests over the generic element types the seam-carving arrays use (float64
// energy samples, int rank values, uint32 pixel offsets).
package xmath

import "golang.org/x/exp/constraints"

// Min returns the smaller of x and y.
func Min[T constraints.Ordered](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the bigger of x and y.
func Max[T constraints.Ordered](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Abs returns the absolute value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Min3 returns the smallest of three values.
func Min3[T constraints.Ordered](x, y, z T) T {
	return Min(x, Min(y, z))
}

// Max3 returns the largest of three values.
func Max3[T constraints.Ordered](x, y, z T) T {
	return Max(x, Max(y, z))
}

// Clamp restricts x to the closed interval [lo, hi].
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	return Min(Max(x, lo), hi)
}

// Contains reports whether s holds v.
func Contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
