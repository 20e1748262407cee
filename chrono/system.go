package chrono

import "time"

// SystemTicker is a Ticker backed by the Go runtime's monotonic clock
// (time.Since), which never goes backwards on a healthy system per the Go
// 1.9+ runtime guarantee.
type SystemTicker struct {
	NanoTicker
	start time.Time
}

// NewSystemTicker returns a SystemTicker anchored at the time of the call.
func NewSystemTicker() *SystemTicker {
	return &SystemTicker{NanoTicker: NewNanoTicker(), start: time.Now()}
}

// Ticks returns the elapsed monotonic nanoseconds since the ticker was
// constructed.
func (t *SystemTicker) Ticks() Ticks {
	return t.NewTicks(time.Since(t.start).Nanoseconds())
}

// SystemInstantSource is an InstantSource backed by time.Now(), reporting
// nanosecond precision.
type SystemInstantSource struct{}

// Instant returns the current wall-clock time.
func (SystemInstantSource) Instant() Instant {
	now := time.Now()
	i, err := NewInstant(now.Unix(), uint32(now.Nanosecond()))
	if err != nil {
		// now.Unix()/Nanosecond() are always within Instant's range and
		// [0, 1e9), so this is unreachable.
		panic(err)
	}
	return i
}

// Precision reports nanosecond precision.
func (SystemInstantSource) Precision() int { return PrecisionNanos }
