// Package chrono provides platform-agnostic time primitives: a UTC Instant,
// a Duration, opaque monotonic Ticks, and the Ticker/InstantSource
// abstractions the sntp engine is built on.
package chrono

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned by arithmetic operations that would silently
// wrap if carried out in raw int64 math.
var ErrOverflow = errors.New("chrono: arithmetic overflow")

// ErrContractViolation marks a programmer error: mixing Ticks from
// different Tickers, or a clustered operation reporting
// TIME_ALLOWED_EXCEEDED when time in fact remained. It is always returned
// as an error rather than panicking, so an embedding application can log
// and abort the offending query instead of crashing.
var ErrContractViolation = errors.New("chrono: contract violation")

func addExactInt64(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return sum, nil
}

func subExactInt64(a, b int64) (int64, error) {
	if b == math.MinInt64 {
		// a - MinInt64 == a + 2^63, which only fits in int64 when a < 0.
		if a >= 0 {
			return 0, fmt.Errorf("%w: %d - %d", ErrOverflow, a, b)
		}
		return addExactInt64(a+1, math.MaxInt64)
	}
	return addExactInt64(a, -b)
}

func mulExactInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, a, b)
	}
	return p, nil
}

func negateExactInt64(a int64) (int64, error) {
	if a == math.MinInt64 {
		return 0, fmt.Errorf("%w: -(%d)", ErrOverflow, a)
	}
	return -a, nil
}
