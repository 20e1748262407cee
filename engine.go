// Package sntp implements a Simple NTP (SNTP) client engine: build a
// request, exchange one UDP datagram per candidate server address, and
// compute a corrected clock offset and round-trip delay from the
// response, retrying across addresses within an optional overall time
// budget.
package sntp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/cluster"
	"github.com/coriolis-ntp/sntp/internal/metrics"
	"github.com/coriolis-ntp/sntp/internal/sntplog"
	"github.com/coriolis-ntp/sntp/transport"
	"github.com/coriolis-ntp/sntp/wire"
)

// Engine executes SNTP queries against a configured server. Engine holds
// no mutable state between calls to ExecuteQuery and is safe to call
// concurrently, provided its injected collaborators are (the system
// defaults all are).
type Engine struct {
	serverName      string
	host            string
	port            int
	responseTimeout chrono.Duration

	logger        sntplog.Logger
	instantSource chrono.InstantSource
	ticker        chrono.Ticker
	network       transport.Network
	recorder      metrics.Recorder
	rng           io.Reader

	minimize      bool
	clientVersion uint8
	eraThreshold  chrono.Instant
}

// attemptFailure is the per-IP failure payload threaded through the
// cluster runner.
type attemptFailure struct {
	kind  QueryResultKind
	cause error
}

// ExecuteQuery performs one SNTP query, trying each of the server's
// resolved addresses in order within timeAllowed (unbounded if nil).
//
// The returned error is non-nil only for ErrUnknownHost (resolution
// failure), cluster.ErrInvalidArgument (a non-positive timeAllowed),
// chrono.ErrContractViolation, or an arithmetic overflow in time
// computation — all other outcomes are carried in the returned
// QueryResult.Kind.
func (e *Engine) ExecuteQuery(ctx context.Context, timeAllowed *chrono.Duration) (QueryResult, error) {
	var (
		opResults      []transport.OperationResult
		lastRequest    wire.Header
		lastResponse   *wire.Header
		fatalErr       error
	)

	resolve := func(name string) ([]net.IP, error) {
		ips, err := e.network.GetAllByName(e.host)
		if err != nil {
			e.logger.Warning("sntp: resolution failed for "+e.host, err)
			return nil, fmt.Errorf("%w: %v", ErrUnknownHost, err)
		}
		return ips, nil
	}

	operation := func(ctx context.Context, name string, ip net.IP, _ struct{}, remaining *chrono.Duration) cluster.ServiceResult[TimeSignal, attemptFailure] {
		signal, opResult, reqHeader, respHeader, outcome := e.attempt(ip)
		opResults = append(opResults, opResult)
		lastRequest = reqHeader
		if respHeader != nil {
			lastResponse = respHeader
		}

		if outcome.fatal != nil {
			fatalErr = outcome.fatal
			return cluster.FailureHalt[TimeSignal, attemptFailure](attemptFailure{kind: ProtocolError, cause: outcome.fatal})
		}
		switch outcome.kind {
		case Success:
			e.recorder.ObserveAttempt("success")
			if nanos, err := signal.Offset.Nanos(); err == nil {
				e.recorder.ObserveOffsetSeconds(float64(nanos) / 1e9)
			}
			if nanos, err := signal.RoundTrip.Nanos(); err == nil {
				e.recorder.ObserveRoundTripSeconds(float64(nanos) / 1e9)
			}
			return cluster.Success[TimeSignal, attemptFailure](signal)
		case RetryLater:
			e.recorder.ObserveAttempt("retry_later")
			return cluster.FailureAdvance[TimeSignal, attemptFailure](attemptFailure{kind: RetryLater, cause: outcome.cause})
		default: // ProtocolError
			e.recorder.ObserveAttempt("protocol_error")
			return cluster.FailureHalt[TimeSignal, attemptFailure](attemptFailure{kind: ProtocolError, cause: outcome.cause})
		}
	}

	result, err := cluster.RunClustered(ctx, e.ticker, resolve, operation, e.serverName, struct{}{}, timeAllowed)
	if err != nil {
		return QueryResult{}, err
	}
	if fatalErr != nil {
		return QueryResult{}, fatalErr
	}

	debugInfo := DebugInfo{
		OperationResults: opResults,
		RequestHeader:    lastRequest,
		ResponseHeader:   lastResponse,
	}

	switch result.Kind {
	case cluster.ClusteredSuccess:
		return QueryResult{Kind: Success, Signal: result.Success, DebugInfo: debugInfo}, nil
	case cluster.ClusteredTimeAllowedExceeded:
		return QueryResult{Kind: TimeAllowedExceeded, DebugInfo: debugInfo}, nil
	default:
		if len(result.Failures) == 0 {
			return QueryResult{
				Kind:      ProtocolError,
				Cause:     errors.New("sntp: resolver returned no candidate addresses"),
				DebugInfo: debugInfo,
			}, nil
		}
		last := result.Failures[len(result.Failures)-1]
		return QueryResult{Kind: last.kind, Cause: last.cause, DebugInfo: debugInfo}, nil
	}
}

// attemptOutcome is the classification produced by a single per-IP
// network attempt.
type attemptOutcome struct {
	kind  QueryResultKind
	cause error
	// fatal, if set, indicates an unreachable-in-practice arithmetic
	// overflow while computing offset/round-trip — a programmer error in
	// the bounds assumed elsewhere, not a network condition.
	fatal error
}

// attempt performs exactly one send/receive exchange against ip, opening
// and closing exactly one UDP socket. It never returns an error itself;
// failures are carried in the returned attemptOutcome so every exit path
// still produces a transport.OperationResult for DebugInfo.
func (e *Engine) attempt(ip net.IP) (TimeSignal, transport.OperationResult, wire.Header, *wire.Header, attemptOutcome) {
	socket, err := e.network.CreateUDPSocket()
	if err != nil {
		return TimeSignal{}, transport.OperationResult{Kind: transport.Failure, Cause: err}, wire.Header{}, nil,
			attemptOutcome{kind: RetryLater, cause: err}
	}
	defer socket.Close()

	addr := &net.UDPAddr{IP: ip, Port: e.port}

	if err := socket.SetSoTimeout(e.responseTimeout); err != nil {
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: err}, wire.Header{}, nil,
			attemptOutcome{kind: RetryLater, cause: err}
	}

	trueT1 := e.instantSource.Instant()
	reqHeader, t1Wire, err := newRequest(trueT1, e.rng, e.clientVersion, e.minimize)
	if err != nil {
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: err}, wire.Header{}, nil,
			attemptOutcome{kind: RetryLater, cause: err}
	}

	if err := socket.Send(ip, e.port, reqHeader.Bytes()); err != nil {
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: err}, reqHeader, nil,
			attemptOutcome{kind: RetryLater, cause: err}
	}

	buf := make([]byte, 128)
	n, _, err := socket.Receive(buf)
	tResp := e.ticker.Ticks()
	iResp := e.instantSource.Instant()
	if err != nil {
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: err}, reqHeader, nil,
			attemptOutcome{kind: RetryLater, cause: err}
	}

	respHeader, err := wire.DecodeHeader(buf[:n])
	if err != nil {
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: err}, reqHeader, nil,
			attemptOutcome{kind: ProtocolError, cause: err}
	}

	if respHeader.VersionNumber() != e.clientVersion {
		cause := fmt.Errorf("sntp: response version %d does not match request version %d", respHeader.VersionNumber(), e.clientVersion)
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: cause}, reqHeader, &respHeader,
			attemptOutcome{kind: ProtocolError, cause: cause}
	}
	if respHeader.Mode() != 4 {
		cause := fmt.Errorf("sntp: response mode %d is not server mode (4)", respHeader.Mode())
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: cause}, reqHeader, &respHeader,
			attemptOutcome{kind: ProtocolError, cause: cause}
	}

	stratum := respHeader.Stratum()
	if stratum == 0 {
		kiss := KissCodeFromReferenceIdentifier(respHeader.ReferenceIdentifierString())
		cause := fmt.Errorf("sntp: server sent Kiss-o'-Death: %s", kiss)
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: cause}, reqHeader, &respHeader,
			attemptOutcome{kind: RetryLater, cause: cause}
	}
	if stratum > 15 {
		cause := fmt.Errorf("sntp: response stratum %d out of range (1-15)", stratum)
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: cause}, reqHeader, &respHeader,
			attemptOutcome{kind: ProtocolError, cause: cause}
	}

	if respHeader.OriginateTimestamp() != t1Wire {
		cause := fmt.Errorf("sntp: response originate timestamp does not match request transmit timestamp")
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: cause}, reqHeader, &respHeader,
			attemptOutcome{kind: ProtocolError, cause: cause}
	}

	xmitWire := respHeader.TransmitTimestamp()
	if xmitWire.IsZero() {
		cause := fmt.Errorf("sntp: response transmit timestamp is zero")
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: cause}, reqHeader, &respHeader,
			attemptOutcome{kind: ProtocolError, cause: cause}
	}

	t2 := respHeader.ReceiveTimestamp().ToInstant(e.eraThreshold)
	t3 := xmitWire.ToInstant(e.eraThreshold)

	signal, arithErr := computeTimeSignal(trueT1, t2, t3, iResp, tResp, respHeader)
	if arithErr != nil {
		return TimeSignal{}, transport.OperationResult{SocketAddress: addr, Kind: transport.Failure, Cause: arithErr}, reqHeader, &respHeader,
			attemptOutcome{fatal: arithErr}
	}

	return signal, transport.OperationResult{SocketAddress: addr, Kind: transport.Success}, reqHeader, &respHeader,
		attemptOutcome{kind: Success}
}

// computeTimeSignal implements spec step 5-6: Offset = ((T2-T1)+(T3-T4))/2,
// RoundTrip = (T4-T1)-(T3-T2) clamped to zero, RootDistance = (RootDelay +
// RoundTrip)/2 + RootDispersion, and the corrected result Instant.
func computeTimeSignal(t1, t2, t3, t4 chrono.Instant, tResp chrono.Ticks, respHeader wire.Header) (TimeSignal, error) {
	d1 := chrono.Between(t1, t2) // T2 - T1
	d2 := chrono.Between(t4, t3) // T3 - T4
	sum, err := d1.Add(d2)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: offset overflow: %w", err)
	}
	offset, err := sum.DividedBy(2)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: offset overflow: %w", err)
	}

	d3 := chrono.Between(t1, t4) // T4 - T1
	d4 := chrono.Between(t2, t3) // T3 - T2
	roundTrip, err := d3.Sub(d4)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: round trip overflow: %w", err)
	}
	if roundTrip.Compare(chrono.Zero) < 0 {
		roundTrip = chrono.Zero
	}

	rootDelay, err := respHeader.RootDelay()
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: root delay: %w", err)
	}
	rootDispersion, err := respHeader.RootDispersion()
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: root dispersion: %w", err)
	}
	sumRD, err := rootDelay.Add(roundTrip)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: root distance overflow: %w", err)
	}
	halfRD, err := sumRD.DividedBy(2)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: root distance overflow: %w", err)
	}
	rootDistance, err := halfRD.Add(rootDispersion)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: root distance overflow: %w", err)
	}

	resultInstant, err := t4.Plus(offset)
	if err != nil {
		return TimeSignal{}, fmt.Errorf("sntp: result instant overflow: %w", err)
	}

	return TimeSignal{
		ResultTicks:         tResp,
		ResultInstant:       resultInstant,
		Offset:              offset,
		RoundTrip:           roundTrip,
		RootDistance:        rootDistance,
		Stratum:             respHeader.Stratum(),
		LeapIndicator:       respHeader.LeapIndicator(),
		ReferenceIdentifier: respHeader.ReferenceIdentifierString(),
	}, nil
}
