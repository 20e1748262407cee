package wire

import (
	"testing"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/stretchr/testify/require"
)

func TestHeaderBuilderRoundTrip(t *testing.T) {
	h, err := NewHeaderBuilder().
		SetLeapIndicator(0).
		SetVersionNumber(4).
		SetMode(3).
		SetStratum(1).
		SetPollIntervalExponent(6).
		SetPrecisionExponent(-20).
		SetRootDelay(chrono.DurationOfSeconds(0)).
		SetRootDispersion(chrono.DurationOfSeconds(0)).
		SetReferenceIdentifierString("GPS").
		SetTransmitTimestamp(Timestamp64{Seconds: 123, Fraction: 456}).
		Build()
	require.NoError(t, err)

	decoded, err := DecodeHeader(h.Bytes())
	require.NoError(t, err)
	require.Equal(t, h, decoded, "fromBytes(toBytes(h)) must equal h byte-for-byte")

	require.Equal(t, uint8(0), decoded.LeapIndicator())
	require.Equal(t, uint8(4), decoded.VersionNumber())
	require.Equal(t, uint8(3), decoded.Mode())
	require.Equal(t, uint8(1), decoded.Stratum())

	poll, err := decoded.PollIntervalExponent()
	require.NoError(t, err)
	require.Equal(t, uint8(6), poll)

	prec, err := decoded.PrecisionExponent()
	require.NoError(t, err)
	require.Equal(t, int8(-20), prec)

	require.Equal(t, "GPS", decoded.ReferenceIdentifierString())
	require.Equal(t, Timestamp64{Seconds: 123, Fraction: 456}, decoded.TransmitTimestamp())
}

func TestHeaderSize(t *testing.T) {
	h, err := NewHeaderBuilder().Build()
	require.NoError(t, err)
	require.Len(t, h.Bytes(), HeaderSizeBytes)
}

func TestDecodeHeaderRejectsWrongLength(t *testing.T) {
	_, err := DecodeHeader(make([]byte, 47))
	require.Error(t, err)
	_, err = DecodeHeader(make([]byte, 49))
	require.Error(t, err)
}

func TestDecodeHeaderDefersValidation(t *testing.T) {
	buf := make([]byte, HeaderSizeBytes)
	buf[2] = 18 // poll exponent out of [0,17]
	buf[3] = 5  // precision exponent non-negative

	h, err := DecodeHeader(buf)
	require.NoError(t, err, "decode itself never validates field ranges")

	_, err = h.PollIntervalExponent()
	require.ErrorIs(t, err, ErrInvalidNtpValue)

	_, err = h.PrecisionExponent()
	require.ErrorIs(t, err, ErrInvalidNtpValue)
}

func TestPollIntervalExponentBoundaries(t *testing.T) {
	for _, exp := range []uint8{0, 17} {
		h, err := NewHeaderBuilder().SetPollIntervalExponent(exp).Build()
		require.NoError(t, err)
		got, err := h.PollIntervalExponent()
		require.NoError(t, err)
		require.Equal(t, exp, got)
	}
	_, err := NewHeaderBuilder().SetPollIntervalExponent(18).Build()
	require.ErrorIs(t, err, ErrInvalidNtpValue)
}

func TestPrecisionExponentBoundaries(t *testing.T) {
	for _, exp := range []int8{-128, -1} {
		h, err := NewHeaderBuilder().SetPrecisionExponent(exp).Build()
		require.NoError(t, err)
		got, err := h.PrecisionExponent()
		require.NoError(t, err)
		require.Equal(t, exp, got)
	}
	for _, exp := range []int8{0, 1} {
		_, err := NewHeaderBuilder().SetPrecisionExponent(exp).Build()
		require.ErrorIs(t, err, ErrInvalidNtpValue)
	}
}

func TestLeapVersionModeSplit(t *testing.T) {
	h, err := NewHeaderBuilder().SetLeapIndicator(3).SetVersionNumber(4).SetMode(3).Build()
	require.NoError(t, err)
	require.Equal(t, uint8(3), h.LeapIndicator())
	require.Equal(t, uint8(4), h.VersionNumber())
	require.Equal(t, uint8(3), h.Mode())
	require.Equal(t, byte(0b11_100_011), h.Bytes()[0])

	_, err = NewHeaderBuilder().SetLeapIndicator(4).Build()
	require.ErrorIs(t, err, ErrInvalidNtpValue, "LI > 3 must be rejected, not emulated")
}

func TestReferenceIdentifierStringTooLong(t *testing.T) {
	_, err := NewHeaderBuilder().SetReferenceIdentifierString("TOOLONG").Build()
	require.ErrorIs(t, err, ErrInvalidNtpValue)
}

func TestRootDelayRoundTrip(t *testing.T) {
	d, err := chrono.NewDuration(1, 500_000_000)
	require.NoError(t, err)
	h, err := NewHeaderBuilder().SetRootDelay(d).Build()
	require.NoError(t, err)

	got, err := h.RootDelay()
	require.NoError(t, err)
	gotNanos, err := got.Nanos()
	require.NoError(t, err)
	wantNanos, err := d.Nanos()
	require.NoError(t, err)
	require.InDelta(t, wantNanos, gotNanos, 20000, "16.16 fixed point loses some sub-microsecond precision")
}
