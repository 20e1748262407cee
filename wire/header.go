package wire

import (
	"fmt"

	"github.com/coriolis-ntp/sntp/chrono"
)

// HeaderSizeBytes is the fixed wire size of an NTP header.
const HeaderSizeBytes = 48

const (
	offsetLiVnMode  = 0
	offsetStratum   = 1
	offsetPoll      = 2
	offsetPrecision = 3
	offsetRootDelay = 4
	offsetRootDisp  = 8
	offsetRefID     = 12
	offsetRefTime   = 16
	offsetOrigTime  = 24
	offsetRecvTime  = 32
	offsetXmitTime  = 40
)

// Header is an immutable 48-byte NTP header. Decoding stores the raw bytes
// verbatim and defers range validation to the individual field accessors,
// which fail with ErrInvalidNtpValue when the stored byte is out of the
// range the NTP format allows.
type Header struct {
	buf [HeaderSizeBytes]byte
}

// DecodeHeader stores buf verbatim as a Header. The only check performed
// eagerly is the length; every field's value range is validated lazily by
// its accessor.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) != HeaderSizeBytes {
		return Header{}, fmt.Errorf("wire: expected %d byte header, got %d", HeaderSizeBytes, len(buf))
	}
	var h Header
	copy(h.buf[:], buf)
	return h, nil
}

// Bytes returns the 48-byte wire representation.
func (h Header) Bytes() []byte {
	out := make([]byte, HeaderSizeBytes)
	copy(out, h.buf[:])
	return out
}

// LeapIndicator returns the 2-bit leap indicator (0-3). Always in range by
// construction of the bit width, so it never fails.
func (h Header) LeapIndicator() uint8 {
	return h.buf[offsetLiVnMode] >> 6
}

// VersionNumber returns the 3-bit version number (0-7).
func (h Header) VersionNumber() uint8 {
	return (h.buf[offsetLiVnMode] >> 3) & 0x07
}

// Mode returns the 3-bit mode (0-7).
func (h Header) Mode() uint8 {
	return h.buf[offsetLiVnMode] & 0x07
}

// Stratum returns the stratum byte (0-255, no further validation per spec).
func (h Header) Stratum() uint8 {
	return h.buf[offsetStratum]
}

// PollIntervalExponent returns the raw poll byte, validated to fall in
// [0, 17].
func (h Header) PollIntervalExponent() (uint8, error) {
	raw := h.buf[offsetPoll]
	if raw > 17 {
		return 0, fmt.Errorf("%w: poll exponent %d not in [0, 17]", ErrInvalidNtpValue, raw)
	}
	return raw, nil
}

// PollInterval returns the poll interval as a Duration (2^exponent
// seconds), failing if the stored exponent is out of range.
func (h Header) PollInterval() (chrono.Duration, error) {
	exp, err := h.PollIntervalExponent()
	if err != nil {
		return chrono.Duration{}, err
	}
	return chrono.DurationOfSeconds(int64(1) << exp), nil
}

// PrecisionExponent returns the raw precision byte interpreted as a signed
// exponent, validated to fall in [-128, -1].
func (h Header) PrecisionExponent() (int8, error) {
	raw := int8(h.buf[offsetPrecision])
	if raw >= 0 {
		return 0, fmt.Errorf("%w: precision exponent %d not in [-128, -1]", ErrInvalidNtpValue, raw)
	}
	return raw, nil
}

// Precision returns the precision as a Duration (2^exponent seconds),
// failing if the stored exponent is out of range.
func (h Header) Precision() (chrono.Duration, error) {
	exp, err := h.PrecisionExponent()
	if err != nil {
		return chrono.Duration{}, err
	}
	shift := uint(-exp)
	var nanos int64
	if shift < 64 {
		nanos = int64(1_000_000_000) >> shift
	}
	return chrono.DurationOfNanos(nanos)
}

func decodeShortFixed(v uint32) (chrono.Duration, error) {
	seconds := int64(v >> 16)
	nanos := int64((uint64(v&0xFFFF) * 1_000_000_000) / 65536)
	return chrono.NewDuration(seconds, nanos)
}

func encodeShortFixed(d chrono.Duration) uint32 {
	seconds := d.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	frac := (uint64(d.NanoOfSecond()) * 65536) / 1_000_000_000
	return uint32(seconds)<<16 | uint32(frac)
}

// RootDelay returns the 16.16 fixed-point root delay as a Duration.
func (h Header) RootDelay() (chrono.Duration, error) {
	return decodeShortFixed(beUint32(h.buf[offsetRootDelay : offsetRootDelay+4]))
}

// RootDispersion returns the 16.16 fixed-point root dispersion as a
// Duration.
func (h Header) RootDispersion() (chrono.Duration, error) {
	return decodeShortFixed(beUint32(h.buf[offsetRootDisp : offsetRootDisp+4]))
}

// ReferenceIdentifierBytes returns the raw 4-byte reference identifier.
func (h Header) ReferenceIdentifierBytes() [4]byte {
	var b [4]byte
	copy(b[:], h.buf[offsetRefID:offsetRefID+4])
	return b
}

// ReferenceIdentifierString renders the reference identifier as ASCII,
// trimming trailing NULs; non-printable bytes are preserved as-is (this
// is a display helper, not a validating accessor).
func (h Header) ReferenceIdentifierString() string {
	b := h.ReferenceIdentifierBytes()
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

func (h Header) timestampAt(offset int) Timestamp64 {
	return Timestamp64{
		Seconds:  beUint32(h.buf[offset : offset+4]),
		Fraction: beUint32(h.buf[offset+4 : offset+8]),
	}
}

// ReferenceTimestamp returns the header's reference timestamp.
func (h Header) ReferenceTimestamp() Timestamp64 { return h.timestampAt(offsetRefTime) }

// OriginateTimestamp returns the header's originate timestamp.
func (h Header) OriginateTimestamp() Timestamp64 { return h.timestampAt(offsetOrigTime) }

// ReceiveTimestamp returns the header's receive timestamp.
func (h Header) ReceiveTimestamp() Timestamp64 { return h.timestampAt(offsetRecvTime) }

// TransmitTimestamp returns the header's transmit timestamp.
func (h Header) TransmitTimestamp() Timestamp64 { return h.timestampAt(offsetXmitTime) }

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putBeUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
