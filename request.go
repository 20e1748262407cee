package sntp

import (
	"io"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/wire"
)

// defaultPrecisionExponent is the placeholder precision advertised by the
// client in its own request header; it describes the server's precision
// on a response, not the client's, so any valid negative exponent works.
const defaultPrecisionExponent = -1

// newRequest builds a fresh client-mode request header around the given
// transmit Instant. It returns the raw wire Timestamp64 actually embedded
// in the header (which may have randomized low bits if minimize is set)
// so the caller can compare it against the response's echoed originate
// timestamp without re-decoding the header it just built; the caller is
// expected to keep the original, un-randomized Instant separately for
// offset/round-trip arithmetic.
func newRequest(transmitInstant chrono.Instant, rng io.Reader, version uint8, minimize bool) (wire.Header, wire.Timestamp64, error) {
	t1 := wire.TimestampFromInstant(transmitInstant)

	if minimize {
		randomized, err := wire.RandomizeLowestBits(rng, t1.Fraction, wire.DataMinimizationBits)
		if err != nil {
			return wire.Header{}, wire.Timestamp64{}, err
		}
		t1.Fraction = randomized
	}

	h, err := wire.NewHeaderBuilder().
		SetLeapIndicator(0).
		SetVersionNumber(version).
		SetMode(3).
		SetStratum(0).
		SetPollIntervalExponent(0).
		SetPrecisionExponent(defaultPrecisionExponent).
		SetRootDelay(chrono.Zero).
		SetRootDispersion(chrono.Zero).
		SetReferenceIdentifierBytes([4]byte{}).
		SetReferenceTimestamp(wire.ZeroTimestamp64).
		SetOriginateTimestamp(wire.ZeroTimestamp64).
		SetReceiveTimestamp(wire.ZeroTimestamp64).
		SetTransmitTimestamp(t1).
		Build()
	if err != nil {
		return wire.Header{}, wire.Timestamp64{}, err
	}
	return h, t1, nil
}
