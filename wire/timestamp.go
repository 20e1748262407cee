// Package wire implements the on-the-wire NTP codec: the 64-bit
// fixed-point Timestamp64 and the 48-byte NtpHeader, with lazy field
// validation on decode in the style of a raw-buffer frame codec.
package wire

import (
	"errors"
	"io"

	"github.com/coriolis-ntp/sntp/chrono"
)

// ErrInvalidNtpValue is returned by field accessors and builder setters
// when a value falls outside the range the NTP wire format allows.
var ErrInvalidNtpValue = errors.New("wire: invalid NTP value")

// DataMinimizationBits is the number of low-order transmit-timestamp
// fraction bits randomized when client data minimization is enabled —
// fixed at 27, leaving the top 5 fraction bits (1/32 s resolution), per
// the NTP data-minimization draft, exposed as a named constant so the policy can be revisited.
const DataMinimizationBits = 27

// ntpEpoch is 1900-01-01T00:00:00Z, the origin of the NTP timestamp space.
var ntpEpoch = mustInstant(-2208988800, 0)

// DefaultEraThreshold is 1968-01-20T03:14:07Z (NTP seconds 0x7FFFFFFF),
// the midpoint of NTP era 0. Decoding any Timestamp64 against this
// threshold correctly resolves the timestamp to the 1968–2104 window.
var DefaultEraThreshold = mustInstantPlusSeconds(ntpEpoch, 0x7FFFFFFF)

func mustInstant(sec int64, nano uint32) chrono.Instant {
	i, err := chrono.NewInstant(sec, nano)
	if err != nil {
		panic(err)
	}
	return i
}

func mustInstantPlusSeconds(base chrono.Instant, seconds int64) chrono.Instant {
	i, err := base.Plus(chrono.DurationOfSeconds(seconds))
	if err != nil {
		panic(err)
	}
	return i
}

// Timestamp64 is the NTP 64-bit timestamp: a count of whole NTP seconds
// since 1900-01-01T00:00:00Z (modulo 2^32) plus a binary fraction of a
// second (seconds × 2^32).
type Timestamp64 struct {
	Seconds  uint32
	Fraction uint32
}

// ZeroTimestamp64 is the all-zero timestamp used as a sentinel (e.g. for
// an unset originate/receive timestamp in a fresh request).
var ZeroTimestamp64 = Timestamp64{}

// IsZero reports whether t is the all-zero timestamp.
func (t Timestamp64) IsZero() bool { return t.Seconds == 0 && t.Fraction == 0 }

// ToInstant resolves t to the smallest Instant >= eraThreshold whose NTP
// seconds value (mod 2^32) equals t.Seconds.
func (t Timestamp64) ToInstant(eraThreshold chrono.Instant) chrono.Instant {
	thresholdSeconds := chrono.Between(ntpEpoch, eraThreshold).Seconds()
	diff := thresholdSeconds - int64(t.Seconds)

	const eraSize = int64(1) << 32
	floorEra := diff >> 32
	era := floorEra
	if diff&0xFFFFFFFF != 0 {
		era++
	}

	totalSeconds := int64(t.Seconds) + era*eraSize
	nanos := int64((uint64(t.Fraction) * 1_000_000_000) >> 32)

	result, err := ntpEpoch.Plus(chrono.DurationOfSeconds(totalSeconds))
	if err != nil {
		panic(err)
	}
	nanoDur, err := chrono.DurationOfNanos(nanos)
	if err != nil {
		panic(err)
	}
	result, err = result.Plus(nanoDur)
	if err != nil {
		panic(err)
	}
	return result
}

// TimestampFromInstant converts i to its Timestamp64 representation,
// masking the era-relative second count to 32 bits and truncating the
// sub-second fraction.
func TimestampFromInstant(i chrono.Instant) Timestamp64 {
	d := chrono.Between(ntpEpoch, i)
	seconds := uint32(d.Seconds())
	fraction := uint32((uint64(d.NanoOfSecond()) << 32) / 1_000_000_000)
	return Timestamp64{Seconds: seconds, Fraction: fraction}
}

// RandomizeLowestBits replaces the lowest k bits (1 <= k < 32) of fraction
// with uniform random bits read from rng, preserving the upper bits. It
// is used to obfuscate transmit-time precision per the NTP
// data-minimization draft.
func RandomizeLowestBits(rng io.Reader, fraction uint32, k uint) (uint32, error) {
	if k < 1 || k > 31 {
		return 0, errors.New("wire: k must be in [1, 31]")
	}
	var buf [4]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return 0, err
	}
	random := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	mask := uint32(1)<<k - 1
	return (fraction &^ mask) | (random & mask), nil
}
