package cluster

import (
	"context"
	"net"
	"testing"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/internal/clocktest"
	"github.com/stretchr/testify/require"
)

func mustDuration(t *testing.T, seconds int64, nanos int64) chrono.Duration {
	t.Helper()
	d, err := chrono.NewDuration(seconds, nanos)
	require.NoError(t, err)
	return d
}

func TestRunClusteredSingleIPSuccess(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	ips := []net.IP{net.ParseIP("1.1.1.1")}

	resolve := func(string) ([]net.IP, error) { return ips, nil }
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		return Success[string, string]("ok:" + ip.String())
	}

	result, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, nil)
	require.NoError(t, err)
	require.Equal(t, ClusteredSuccess, result.Kind)
	require.Equal(t, "ok:1.1.1.1", result.Success)
	require.True(t, result.Halted)
}

func TestRunClusteredPreservesResolverOrderInFailures(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	ips := []net.IP{net.ParseIP("1.1.1.1"), net.ParseIP("2.2.2.2"), net.ParseIP("3.3.3.3")}

	resolve := func(string) ([]net.IP, error) { return ips, nil }
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		return FailureAdvance[string, string]("failed:" + ip.String())
	}

	result, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, nil)
	require.NoError(t, err)
	require.Equal(t, ClusteredFailure, result.Kind)
	require.False(t, result.Halted, "exhausting the IP list via FAILURE_ADVANCE is not a halt")
	require.Equal(t, []string{"failed:1.1.1.1", "failed:2.2.2.2", "failed:3.3.3.3"}, result.Failures)
}

func TestRunClusteredFailureHaltStopsEarly(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	ips := []net.IP{net.ParseIP("1.1.1.1"), net.ParseIP("2.2.2.2")}
	attempts := 0

	resolve := func(string) ([]net.IP, error) { return ips, nil }
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		attempts++
		return FailureHalt[string, string]("halted")
	}

	result, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, nil)
	require.NoError(t, err)
	require.Equal(t, ClusteredFailure, result.Kind)
	require.True(t, result.Halted)
	require.Equal(t, 1, attempts, "halting failure must not advance to the next IP")
}

func TestRunClusteredTimeBudgetExhaustedAtResolution(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	ips := []net.IP{net.ParseIP("1.1.1.1")}
	attempts := 0

	resolve := func(string) ([]net.IP, error) {
		ticker.Advance(mustDuration(t, 10, 0)) // resolution "takes" 10s
		return ips, nil
	}
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		attempts++
		return Success[string, string]("unreachable")
	}

	budget := mustDuration(t, 5, 0)
	result, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, &budget)
	require.NoError(t, err)
	require.Equal(t, ClusteredTimeAllowedExceeded, result.Kind)
	require.Equal(t, 0, attempts, "no attempts should be made once the budget is already exhausted")
}

func TestRunClusteredOperationLyingAboutTimeExceededIsContractViolation(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	ips := []net.IP{net.ParseIP("1.1.1.1")}

	resolve := func(string) ([]net.IP, error) { return ips, nil }
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		ticker.Advance(mustDuration(t, 3, 0)) // only 3s of a 5s budget used
		return TimeAllowedExceededResult[string, string]()
	}

	budget := mustDuration(t, 5, 0)
	_, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, &budget)
	require.ErrorIs(t, err, chrono.ErrContractViolation)
}

func TestRunClusteredInvalidArgumentOnNonPositiveBudget(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	resolve := func(string) ([]net.IP, error) { return nil, nil }
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		return Success[string, string]("")
	}

	zero := chrono.Zero
	_, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, &zero)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRunClusteredResolverErrorBubbles(t *testing.T) {
	ticker := clocktest.NewFakeTicker()
	wantErr := context.Canceled // stand-in for an UnknownHost-style resolver error
	resolve := func(string) ([]net.IP, error) { return nil, wantErr }
	op := func(ctx context.Context, name string, ip net.IP, param int, remaining *chrono.Duration) ServiceResult[string, string] {
		return Success[string, string]("")
	}

	_, err := RunClustered(context.Background(), ticker, resolve, op, "time.example.com", 0, nil)
	require.ErrorIs(t, err, wantErr)
}
