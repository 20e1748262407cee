package chrono

import "fmt"

// MinEpochSecond and MaxEpochSecond bound the allowed Instant range,
// matching java.time.Instant's documented range of roughly
// ±31,556,889,864,403,199 seconds around the epoch.
const (
	MinEpochSecond int64 = -31556889864403199
	MaxEpochSecond int64 = 31556889864403199
)

// Instant is a point on the UTC timeline: a whole epoch second plus a
// nanosecond-of-second offset in [0, 1e9). Immutable.
type Instant struct {
	epochSecond  int64
	nanoOfSecond uint32
}

// NewInstant validates and constructs an Instant.
func NewInstant(epochSecond int64, nanoOfSecond uint32) (Instant, error) {
	if nanoOfSecond >= nanosPerSecond {
		return Instant{}, fmt.Errorf("chrono: nanoOfSecond %d out of range [0, 1e9)", nanoOfSecond)
	}
	if epochSecond < MinEpochSecond || epochSecond > MaxEpochSecond {
		return Instant{}, fmt.Errorf("chrono: epochSecond %d out of range", epochSecond)
	}
	return Instant{epochSecond: epochSecond, nanoOfSecond: nanoOfSecond}, nil
}

// InstantFromEpochMilli constructs an Instant from a millisecond-since-epoch
// value, the inverse of EpochMilli.
func InstantFromEpochMilli(millis int64) (Instant, error) {
	sec := millis / 1000
	rem := millis % 1000
	if rem < 0 {
		rem += 1000
		sec--
	}
	return NewInstant(sec, uint32(rem)*1_000_000)
}

// EpochSecond returns the whole-second component.
func (i Instant) EpochSecond() int64 { return i.epochSecond }

// NanoOfSecond returns the sub-second component, in [0, 1e9).
func (i Instant) NanoOfSecond() uint32 { return i.nanoOfSecond }

// EpochMilli returns i as milliseconds since the epoch, failing if it
// overflows int64.
func (i Instant) EpochMilli() (int64, error) {
	secMillis, err := mulExactInt64(i.epochSecond, 1000)
	if err != nil {
		return 0, err
	}
	return addExactInt64(secMillis, int64(i.nanoOfSecond)/1_000_000)
}

// Plus returns i + d, failing on overflow.
func (i Instant) Plus(d Duration) (Instant, error) {
	seconds, err := addExactInt64(i.epochSecond, d.seconds)
	if err != nil {
		return Instant{}, err
	}
	nanos := int64(i.nanoOfSecond) + int64(d.nanoOfSecond)
	if nanos >= nanosPerSecond {
		nanos -= nanosPerSecond
		seconds, err = addExactInt64(seconds, 1)
		if err != nil {
			return Instant{}, err
		}
	}
	return NewInstant(seconds, uint32(nanos))
}

// Minus returns i - d, failing on overflow.
func (i Instant) Minus(d Duration) (Instant, error) {
	negD, err := d.Negate()
	if err != nil {
		return Instant{}, err
	}
	return i.Plus(negD)
}

// Between returns the Duration b - a. Never fails: the Instant range is
// bounded such that the difference always fits in an int64 second count
// (it need not fit in an int64 nanosecond count).
func Between(a, b Instant) Duration {
	seconds := b.epochSecond - a.epochSecond
	nanos := int64(b.nanoOfSecond) - int64(a.nanoOfSecond)
	d, err := NewDuration(seconds, nanos)
	if err != nil {
		// Unreachable given the documented Instant range, but avoid a
		// silently wrong zero value if that invariant is ever violated.
		panic(fmt.Sprintf("chrono: Between produced an unrepresentable duration: %v", err))
	}
	return d
}

// Compare returns -1, 0 or 1 depending on whether i is before, equal to,
// or after other.
func (i Instant) Compare(other Instant) int {
	if i.epochSecond != other.epochSecond {
		if i.epochSecond < other.epochSecond {
			return -1
		}
		return 1
	}
	switch {
	case i.nanoOfSecond < other.nanoOfSecond:
		return -1
	case i.nanoOfSecond > other.nanoOfSecond:
		return 1
	default:
		return 0
	}
}

// Before reports whether i occurs strictly before other.
func (i Instant) Before(other Instant) bool { return i.Compare(other) < 0 }

// After reports whether i occurs strictly after other.
func (i Instant) After(other Instant) bool { return i.Compare(other) > 0 }

func (i Instant) String() string {
	return fmt.Sprintf("Instant(%d.%09d)", i.epochSecond, i.nanoOfSecond)
}
