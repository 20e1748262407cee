package chrono

import (
	"fmt"
	"math/big"
)

var bigNanosPerSecond = big.NewInt(nanosPerSecond)

func bigFromInt64(v int64) *big.Int { return big.NewInt(v) }

// totalNanosBig represents the duration exactly as (seconds * 1e9 +
// nanoOfSecond) using arbitrary precision, so DividedBy never needs to
// worry about the int64 range of Nanos().
func (d Duration) totalNanosBig() (*big.Int, error) {
	total := new(big.Int).Mul(big.NewInt(d.seconds), bigNanosPerSecond)
	total.Add(total, big.NewInt(int64(d.nanoOfSecond)))
	return total, nil
}

func durationFromBigNanos(totalNanos *big.Int) (Duration, error) {
	seconds := new(big.Int)
	nanos := new(big.Int)
	seconds.QuoRem(totalNanos, bigNanosPerSecond, nanos)
	// QuoRem truncates toward zero; renormalize negative remainders into
	// [0, 1e9) the same way NewDuration does.
	if nanos.Sign() < 0 {
		nanos.Add(nanos, bigNanosPerSecond)
		seconds.Sub(seconds, big.NewInt(1))
	}
	if !seconds.IsInt64() {
		return Duration{}, fmt.Errorf("%w: duration seconds out of int64 range", ErrOverflow)
	}
	return Duration{seconds: seconds.Int64(), nanoOfSecond: uint32(nanos.Int64())}, nil
}
