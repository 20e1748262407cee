package chrono

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstantEpochMilliRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 1_700_000_000_000, -1_700_000_000_000}
	for _, ms := range cases {
		i, err := InstantFromEpochMilli(ms)
		require.NoError(t, err)
		back, err := i.EpochMilli()
		require.NoError(t, err)
		require.Equal(t, ms, back)
	}
}

func TestInstantRangeRejectsOutOfBounds(t *testing.T) {
	_, err := NewInstant(MaxEpochSecond+1, 0)
	require.Error(t, err)
	_, err = NewInstant(MinEpochSecond-1, 0)
	require.Error(t, err)
	_, err = NewInstant(0, 1_000_000_000)
	require.Error(t, err)
}

func TestInstantPlusMinusInverse(t *testing.T) {
	i, err := NewInstant(1000, 500)
	require.NoError(t, err)
	d, err := NewDuration(10, 250)
	require.NoError(t, err)

	plus, err := i.Plus(d)
	require.NoError(t, err)
	back, err := plus.Minus(d)
	require.NoError(t, err)
	require.Equal(t, i, back)
}

func TestInstantCompare(t *testing.T) {
	a, _ := NewInstant(1, 0)
	b, _ := NewInstant(1, 1)
	require.True(t, a.Before(b))
	require.True(t, b.After(a))
	require.Equal(t, 0, a.Compare(a))
}
