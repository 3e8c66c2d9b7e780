package core

import "golang.org/x/exp/constraints"

// exactDiv returns src/target when the division is exact and the result
// lies in [lo, hi].
func exactDiv[T constraints.Unsigned](src, target, lo, hi T) (T, bool) {
	if target == 0 {
		return 0, false
	}
	div := src / target
	if div*target != src || !between(div, lo, hi) {
		return 0, false
	}
	return div, true
}

// ceilDiv returns ceil(a/b) for b > 0.
func ceilDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func between[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
