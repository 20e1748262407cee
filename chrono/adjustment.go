package chrono

// LinearAdjustmentTicker wraps a base Ticker and applies a constant
// frequency-error correction expressed in parts-per-billion: for every
// 1e9 base nanoseconds elapsed, ppb additional (or fewer, if negative)
// nanoseconds are added. The correction is computed in floating point so
// large ppb magnitudes don't overflow integer math, then folded back into
// an integer Ticks value of the adjustment ticker.
type LinearAdjustmentTicker struct {
	NanoTicker
	base   Ticker
	ppb    float64
	anchor Ticks
}

// NewLinearAdjustmentTicker anchors the correction at base's current
// reading.
func NewLinearAdjustmentTicker(base Ticker, ppb float64) *LinearAdjustmentTicker {
	return &LinearAdjustmentTicker{
		NanoTicker: NewNanoTicker(),
		base:       base,
		ppb:        ppb,
		anchor:     base.Ticks(),
	}
}

// Ticks returns the adjustment ticker's current reading: the base ticker's
// elapsed time since the anchor, plus the ppb-scaled correction.
func (t *LinearAdjustmentTicker) Ticks() Ticks {
	now := t.base.Ticks()
	elapsed, err := t.base.DurationBetween(t.anchor, now)
	if err != nil {
		// The anchor was captured from the same base ticker at
		// construction time, so this cannot fail in practice.
		panic(err)
	}
	baseNanos, err := elapsed.Nanos()
	if err != nil {
		// Elapsed duration overflowing int64 nanoseconds would require
		// the base ticker to run for roughly 292 years without the
		// adjustment ticker being re-queried; treat as unreachable for
		// any real ticker and fall back to a zero base delta instead of
		// panicking the caller.
		baseNanos = 0
	}
	adjusted := float64(baseNanos) + float64(baseNanos)*(t.ppb/1e9)
	return t.NewTicks(int64(adjusted))
}
