package chrono

import (
	"fmt"
	"sync/atomic"
)

var nextTickerID uint64

// newTickerID mints a process-unique id, used to detect Ticks mixed across
// unrelated Tickers without requiring a shared registry.
func newTickerID() uint64 {
	return atomic.AddUint64(&nextTickerID, 1)
}

// Ticks is an opaque monotonic reading from a single Ticker. Two Ticks are
// only comparable when they originated from the same Ticker.
type Ticks struct {
	origin uint64
	value  int64
}

// Ticker is a source of monotonic Ticks. Implementations are assumed to
// return non-decreasing readings under normal operation.
type Ticker interface {
	// Ticks returns a fresh monotonic reading.
	Ticks() Ticks
	// DurationBetween returns the Duration elapsed from a to b (b - a).
	// It fails with ErrContractViolation if either Ticks did not
	// originate from this Ticker.
	DurationBetween(a, b Ticks) (Duration, error)
}

// NanoTicker is embedded by Ticker implementations whose Ticks values are
// plain monotonic nanosecond counts; it supplies the shared
// origin-checked DurationBetween logic. Exported so Tickers defined
// outside this package (test fakes included) can reuse it.
type NanoTicker struct {
	id uint64
}

// NewNanoTicker mints a NanoTicker with a fresh, process-unique origin id.
func NewNanoTicker() NanoTicker {
	return NanoTicker{id: newTickerID()}
}

// NewTicks wraps a raw nanosecond count as a Ticks value tagged with this
// NanoTicker's origin.
func (t NanoTicker) NewTicks(nanos int64) Ticks {
	return Ticks{origin: t.id, value: nanos}
}

// DurationBetween returns b - a, failing with ErrContractViolation if
// either Ticks did not originate from this NanoTicker.
func (t NanoTicker) DurationBetween(a, b Ticks) (Duration, error) {
	if a.origin != t.id || b.origin != t.id {
		return Duration{}, fmt.Errorf("%w: Ticks did not originate from this Ticker", ErrContractViolation)
	}
	delta, err := subExactInt64(b.value, a.value)
	if err != nil {
		return Duration{}, err
	}
	return NewDuration(0, delta)
}

// InstantSource is a source of wall-clock Instants, along with its
// declared precision.
type InstantSource interface {
	Instant() Instant
	Precision() int
}

// Precision constants for InstantSource implementations.
const (
	PrecisionMillis = 1000
	PrecisionNanos  = 1_000_000_000
)
