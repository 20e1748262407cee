// Package clocktest provides deterministic, manually-steppable Ticker and
// InstantSource fakes for driving the cluster runner and the SNTP engine
// in tests without real wall-clock delay.
package clocktest

import (
	"sync"

	"github.com/coriolis-ntp/sntp/chrono"
)

// FakeTicker is a chrono.Ticker whose reading only advances when Advance
// is called explicitly, so tests can simulate arbitrary elapsed time
// between operations deterministically.
type FakeTicker struct {
	chrono.NanoTicker

	mu     sync.Mutex
	nanos  int64
	ticked []int64
}

// NewFakeTicker returns a FakeTicker starting at zero.
func NewFakeTicker() *FakeTicker {
	return &FakeTicker{NanoTicker: chrono.NewNanoTicker()}
}

// Ticks returns the current simulated reading.
func (f *FakeTicker) Ticks() chrono.Ticks {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticked = append(f.ticked, f.nanos)
	return f.NewTicks(f.nanos)
}

// Advance moves the simulated clock forward by d. d must be
// non-negative; the fake does not support simulating time running
// backwards.
func (f *FakeTicker) Advance(d chrono.Duration) {
	nanos, err := d.Nanos()
	if err != nil {
		panic(err)
	}
	if nanos < 0 {
		panic("clocktest: FakeTicker cannot advance by a negative duration")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nanos += nanos
}

// ReadCount reports how many times Ticks has been called, for tests that
// want to assert on call shape.
func (f *FakeTicker) ReadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ticked)
}

// FakeInstantSource is a chrono.InstantSource returning a manually set
// Instant, advanced in lockstep with a FakeTicker when desired.
type FakeInstantSource struct {
	mu      sync.Mutex
	instant chrono.Instant
}

// NewFakeInstantSource returns a FakeInstantSource starting at start.
func NewFakeInstantSource(start chrono.Instant) *FakeInstantSource {
	return &FakeInstantSource{instant: start}
}

// Instant returns the currently configured Instant.
func (f *FakeInstantSource) Instant() chrono.Instant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instant
}

// Precision reports nanosecond precision, matching chrono.SystemInstantSource.
func (f *FakeInstantSource) Precision() int { return chrono.PrecisionNanos }

// Advance moves the simulated wall clock forward by d.
func (f *FakeInstantSource) Advance(d chrono.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := f.instant.Plus(d)
	if err != nil {
		panic(err)
	}
	f.instant = next
}

// Set overwrites the simulated wall clock directly.
func (f *FakeInstantSource) Set(i chrono.Instant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instant = i
}
