package chrono

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDurationCanonicalization(t *testing.T) {
	cases := []struct {
		sec, nanos int64
	}{
		{0, 0},
		{0, 1_500_000_000},
		{0, -1},
		{-1, -1},
		{5, -2_000_000_001},
	}
	for _, c := range cases {
		d, err := NewDuration(c.sec, c.nanos)
		require.NoError(t, err)
		require.GreaterOrEqual(t, d.NanoOfSecond(), uint32(0))
		require.Less(t, d.NanoOfSecond(), uint32(1_000_000_000))
	}
}

func TestDurationNegateRoundTrip(t *testing.T) {
	d, err := NewDuration(3, 250_000_000)
	require.NoError(t, err)
	neg, err := d.Negate()
	require.NoError(t, err)
	back, err := neg.Negate()
	require.NoError(t, err)
	require.Equal(t, d, back)
	require.True(t, neg.IsNegative())
}

func TestDurationAddOverflow(t *testing.T) {
	max := DurationOfSeconds(math.MaxInt64)
	one := DurationOfSeconds(1)
	_, err := max.Add(one)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestDurationDividedByRoundsTowardZero(t *testing.T) {
	d, err := NewDuration(0, 7)
	require.NoError(t, err)
	got, err := d.DividedBy(2)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Seconds())
	require.Equal(t, uint32(3), got.NanoOfSecond())

	neg, err := d.Negate()
	require.NoError(t, err)
	gotNeg, err := neg.DividedBy(2)
	require.NoError(t, err)
	wantNeg, err := got.Negate()
	require.NoError(t, err)
	require.Equal(t, wantNeg, gotNeg, "division must be symmetric around zero")
}

func TestDurationMillisTruncatesTowardZero(t *testing.T) {
	d, err := NewDuration(0, 1_999_999)
	require.NoError(t, err)
	millis, err := d.Millis()
	require.NoError(t, err)
	require.Equal(t, int64(1), millis)
}

func TestDurationBetweenNeverFails(t *testing.T) {
	a, err := NewInstant(MinEpochSecond, 0)
	require.NoError(t, err)
	b, err := NewInstant(MaxEpochSecond, 999_999_999)
	require.NoError(t, err)
	require.NotPanics(t, func() {
		Between(a, b)
	})
}
