package checked

import "math"

// MulInt returns a*b for non-negative operands, or false on overflow.
func MulInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// AddInt returns a+b for non-negative operands, or false on overflow.
func AddInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// EscapeBound returns 2n+1, the worst-case escaped size of n input bytes.
func EscapeBound(n int) (int, bool) {
	doubled, ok := MulInt(n, 2)
	if !ok {
		return 0, false
	}
	return AddInt(doubled, 1)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod returns the remainder matching FloorDiv; its sign follows b.
func FloorMod(a, b int64) int64 {
	return ((a % b) + b) % b
}
