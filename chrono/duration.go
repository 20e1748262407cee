package chrono

import "fmt"

const nanosPerSecond = 1_000_000_000

// Duration is an immutable span of time, stored canonically: seconds may
// be negative, but nanoOfSecond always falls in [0, 1e9).
type Duration struct {
	seconds     int64
	nanoOfSecond uint32
}

// Zero is the zero-length Duration.
var Zero = Duration{}

// NewDuration builds a Duration from a (seconds, nanos) pair, renormalizing
// nanos into [0, 1e9) with a compensating adjustment to seconds. nanos may
// be outside that range and may be negative.
func NewDuration(seconds int64, nanos int64) (Duration, error) {
	extraSeconds := nanos / nanosPerSecond
	remainder := nanos % nanosPerSecond
	if remainder < 0 {
		remainder += nanosPerSecond
		extraSeconds--
	}
	total, err := addExactInt64(seconds, extraSeconds)
	if err != nil {
		return Duration{}, err
	}
	return Duration{seconds: total, nanoOfSecond: uint32(remainder)}, nil
}

// DurationOfSeconds builds a whole-second Duration.
func DurationOfSeconds(seconds int64) Duration {
	return Duration{seconds: seconds}
}

// DurationOfMillis builds a Duration from a millisecond count.
func DurationOfMillis(millis int64) (Duration, error) {
	d, err := NewDuration(0, 0)
	if err != nil {
		return Duration{}, err
	}
	whole := millis / 1000
	rem := millis % 1000
	d, err = NewDuration(whole, rem*1_000_000)
	if err != nil {
		return Duration{}, err
	}
	return d, nil
}

// DurationOfNanos builds a Duration from a nanosecond count.
func DurationOfNanos(nanos int64) (Duration, error) {
	return NewDuration(0, nanos)
}

// Seconds returns the whole-second component (canonical form: may be
// negative, with NanoOfSecond never negative).
func (d Duration) Seconds() int64 { return d.seconds }

// NanoOfSecond returns the sub-second component, always in [0, 1e9).
func (d Duration) NanoOfSecond() uint32 { return d.nanoOfSecond }

// IsZero reports whether the duration has zero length.
func (d Duration) IsZero() bool { return d.seconds == 0 && d.nanoOfSecond == 0 }

// IsNegative reports whether the duration is less than zero.
func (d Duration) IsNegative() bool { return d.seconds < 0 }

// Compare returns -1, 0 or 1 depending on whether d is less than, equal
// to, or greater than other.
func (d Duration) Compare(other Duration) int {
	if d.seconds != other.seconds {
		if d.seconds < other.seconds {
			return -1
		}
		return 1
	}
	switch {
	case d.nanoOfSecond < other.nanoOfSecond:
		return -1
	case d.nanoOfSecond > other.nanoOfSecond:
		return 1
	default:
		return 0
	}
}

// Add returns d + other, failing on overflow.
func (d Duration) Add(other Duration) (Duration, error) {
	seconds, err := addExactInt64(d.seconds, other.seconds)
	if err != nil {
		return Duration{}, err
	}
	return NewDuration(seconds, int64(d.nanoOfSecond)+int64(other.nanoOfSecond))
}

// Sub returns d - other, failing on overflow.
func (d Duration) Sub(other Duration) (Duration, error) {
	negOther, err := other.Negate()
	if err != nil {
		return Duration{}, err
	}
	return d.Add(negOther)
}

// Negate returns -d, failing on overflow (the canonical MinInt64 edge).
func (d Duration) Negate() (Duration, error) {
	if d.nanoOfSecond == 0 {
		seconds, err := negateExactInt64(d.seconds)
		if err != nil {
			return Duration{}, err
		}
		return Duration{seconds: seconds}, nil
	}
	// -(seconds + nano/1e9) == (-seconds - 1) + (1e9 - nano)/1e9
	seconds, err := negateExactInt64(d.seconds)
	if err != nil {
		return Duration{}, err
	}
	seconds, err = subExactInt64(seconds, 1)
	if err != nil {
		return Duration{}, err
	}
	return Duration{seconds: seconds, nanoOfSecond: nanosPerSecond - d.nanoOfSecond}, nil
}

// DividedBy divides d by the integer n, rounding toward zero, preserving
// sign symmetry around zero.
func (d Duration) DividedBy(n int64) (Duration, error) {
	if n == 0 {
		return Duration{}, fmt.Errorf("chrono: division by zero")
	}
	totalNanos, err := d.totalNanosBig()
	if err != nil {
		return Duration{}, err
	}
	q := totalNanos.Quo(totalNanos, bigFromInt64(n))
	return durationFromBigNanos(q)
}

// Millis returns d truncated toward zero to whole milliseconds, failing
// if the value does not fit in an int64 nanosecond count along the way
// (matches Nanos' range restriction).
func (d Duration) Millis() (int64, error) {
	nanos, err := d.Nanos()
	if err != nil {
		return 0, err
	}
	return nanos / 1_000_000, nil
}

// Nanos returns d as a whole nanosecond count, failing if it overflows
// int64 (matches time.Duration's range).
func (d Duration) Nanos() (int64, error) {
	secNanos, err := mulExactInt64(d.seconds, nanosPerSecond)
	if err != nil {
		return 0, err
	}
	return addExactInt64(secNanos, int64(d.nanoOfSecond))
}

// String renders a debug-friendly representation.
func (d Duration) String() string {
	nanos, err := d.Nanos()
	if err != nil {
		return fmt.Sprintf("%ds%dns", d.seconds, d.nanoOfSecond)
	}
	return fmt.Sprintf("%dns", nanos)
}
