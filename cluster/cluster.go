// Package cluster implements a generic, idempotent-operation retry runner
// over an ordered list of candidate IP addresses, with an overall time
// budget shared across attempts.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/coriolis-ntp/sntp/chrono"
)

// ErrInvalidArgument is returned when RunClustered is called with a
// non-positive timeAllowed.
var ErrInvalidArgument = errors.New("cluster: invalid argument")

// ServiceResultKind classifies the outcome a per-IP operation reports
// back to RunClustered.
type ServiceResultKind int

const (
	// ServiceSuccess ends the loop immediately with a success.
	ServiceSuccess ServiceResultKind = iota
	// ServiceFailureAdvance records a failure and advances to the next IP.
	ServiceFailureAdvance
	// ServiceFailureHalt records a failure and stops the loop without
	// trying any further IPs.
	ServiceFailureHalt
	// ServiceTimeAllowedExceeded reports that the operation itself
	// observed the time budget expire mid-attempt.
	ServiceTimeAllowedExceeded
)

// ServiceResult is the outcome a per-IP operation function returns to
// RunClustered.
type ServiceResult[S, F any] struct {
	Kind    ServiceResultKind
	Success S
	Failure F
}

// Success builds a ServiceResult carrying a successful value.
func Success[S, F any](value S) ServiceResult[S, F] {
	return ServiceResult[S, F]{Kind: ServiceSuccess, Success: value}
}

// FailureAdvance builds a ServiceResult instructing the loop to record
// failure and move on to the next IP.
func FailureAdvance[S, F any](failure F) ServiceResult[S, F] {
	return ServiceResult[S, F]{Kind: ServiceFailureAdvance, Failure: failure}
}

// FailureHalt builds a ServiceResult instructing the loop to record
// failure and stop, without trying any remaining IPs.
func FailureHalt[S, F any](failure F) ServiceResult[S, F] {
	return ServiceResult[S, F]{Kind: ServiceFailureHalt, Failure: failure}
}

// TimeAllowedExceededResult builds a ServiceResult reporting that the
// operation observed its own time budget expire.
func TimeAllowedExceededResult[S, F any]() ServiceResult[S, F] {
	return ServiceResult[S, F]{Kind: ServiceTimeAllowedExceeded}
}

// ClusteredServiceResultKind classifies the final outcome RunClustered
// returns after attempting some prefix of the resolved IP list.
type ClusteredServiceResultKind int

const (
	// ClusteredSuccess means one IP's operation succeeded.
	ClusteredSuccess ClusteredServiceResultKind = iota
	// ClusteredFailure means every attempted IP failed, or a halting
	// failure was reported before exhausting the list.
	ClusteredFailure
	// ClusteredTimeAllowedExceeded means the overall time budget expired
	// before a definitive per-IP result was reached.
	ClusteredTimeAllowedExceeded
)

// ClusteredServiceResult is the final, tagged outcome of RunClustered.
type ClusteredServiceResult[S, F any] struct {
	Kind     ClusteredServiceResultKind
	IPs      []net.IP
	Success  S
	Failures []F
	// Halted reports whether the loop stopped before exhausting every
	// resolved IP (success, a halting failure, or time exhaustion all
	// halt; running out of IPs after advancing failures does not).
	Halted bool
}

// Operation is a single per-IP attempt. remaining is nil when the caller
// set no overall time budget; otherwise it carries the time left for
// this and any subsequent attempt.
type Operation[R, S, F any] func(ctx context.Context, serverName string, ip net.IP, param R, remaining *chrono.Duration) ServiceResult[S, F]

// RunClustered attempts operation against each IP serverName resolves to,
// in the order returned by resolve, until one succeeds, a failure halts
// the loop, the IP list is exhausted, or timeAllowed (if set) elapses.
//
// A non-nil error is returned only for ErrInvalidArgument (a non-positive
// timeAllowed), a resolver failure, chrono.ErrOverflow while computing
// the remaining budget, or chrono.ErrContractViolation — the last of
// which indicates operation reported TIME_ALLOWED_EXCEEDED while time
// genuinely remained (or an unrecognized result kind, or Ticks from
// another Ticker), a programmer error.
func RunClustered[R, S, F any](
	ctx context.Context,
	ticker chrono.Ticker,
	resolve func(serverName string) ([]net.IP, error),
	operation Operation[R, S, F],
	serverName string,
	param R,
	timeAllowed *chrono.Duration,
) (ClusteredServiceResult[S, F], error) {
	var zero ClusteredServiceResult[S, F]

	if timeAllowed != nil && timeAllowed.Compare(chrono.Zero) <= 0 {
		return zero, fmt.Errorf("%w: timeAllowed must be positive, got %s", ErrInvalidArgument, timeAllowed)
	}

	ticksBefore := ticker.Ticks()
	ips, err := resolve(serverName)
	if err != nil {
		return zero, err
	}
	ticksAfter := ticker.Ticks()

	budget, err := remainingBudget(ticker, timeAllowed, ticksBefore, ticksAfter)
	if err != nil {
		return zero, err
	}

	result := ClusteredServiceResult[S, F]{IPs: ips}

	start := ticker.Ticks()
	for i := 0; i < len(ips); i++ {
		if ctx.Err() != nil {
			result.Kind = ClusteredFailure
			result.Halted = true
			return result, nil
		}

		now := ticker.Ticks()
		remaining, err := remainingBudget(ticker, budget, start, now)
		if err != nil {
			return zero, err
		}
		if budget != nil && remaining.Compare(chrono.Zero) <= 0 {
			result.Kind = ClusteredTimeAllowedExceeded
			result.Halted = true
			return result, nil
		}

		attemptResult := operation(ctx, serverName, ips[i], param, remaining)
		afterOp := ticker.Ticks()

		switch attemptResult.Kind {
		case ServiceSuccess:
			result.Kind = ClusteredSuccess
			result.Success = attemptResult.Success
			result.Halted = true
			return result, nil

		case ServiceTimeAllowedExceeded:
			recomputed, err := remainingBudget(ticker, budget, start, afterOp)
			if err != nil {
				return zero, err
			}
			if budget != nil && recomputed.Compare(chrono.Zero) > 0 {
				return zero, fmt.Errorf("%w: operation reported time-allowed-exceeded with %s still remaining",
					chrono.ErrContractViolation, recomputed)
			}
			result.Kind = ClusteredTimeAllowedExceeded
			result.Halted = true
			return result, nil

		case ServiceFailureAdvance:
			result.Failures = append(result.Failures, attemptResult.Failure)
			if i+1 >= len(ips) {
				result.Kind = ClusteredFailure
				result.Halted = false
				return result, nil
			}

		case ServiceFailureHalt:
			result.Failures = append(result.Failures, attemptResult.Failure)
			result.Kind = ClusteredFailure
			result.Halted = true
			return result, nil

		default:
			return zero, fmt.Errorf("%w: operation returned unrecognized ServiceResultKind %d",
				chrono.ErrContractViolation, attemptResult.Kind)
		}
	}

	// Reached only if ips is empty.
	result.Kind = ClusteredFailure
	result.Halted = false
	return result, nil
}

// remainingBudget returns nil when total is nil (no budget configured),
// otherwise total minus the elapsed duration between from and to.
func remainingBudget(ticker chrono.Ticker, total *chrono.Duration, from, to chrono.Ticks) (*chrono.Duration, error) {
	if total == nil {
		return nil, nil
	}
	elapsed, err := ticker.DurationBetween(from, to)
	if err != nil {
		return nil, err
	}
	remaining, err := total.Sub(elapsed)
	if err != nil {
		return nil, err
	}
	return &remaining, nil
}
