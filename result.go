package sntp

import (
	"strings"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/transport"
	"github.com/coriolis-ntp/sntp/wire"
)

// QueryResultKind classifies the outcome of a single Engine.ExecuteQuery
// call. UnknownHost is intentionally absent here: a resolver failure is
// bubbled as a distinct Go error instead, per the error handling design.
type QueryResultKind int

const (
	// Success carries a computed TimeSignal.
	Success QueryResultKind = iota
	// RetryLater indicates a transient failure: socket timeout, socket
	// I/O error, or a server Kiss-o'-Death response.
	RetryLater
	// ProtocolError indicates a malformed or semantically invalid
	// response: bad mode, out-of-range stratum, or an originate-timestamp
	// mismatch.
	ProtocolError
	// TimeAllowedExceeded indicates the clustered loop exhausted its
	// overall time budget before reaching a definitive per-IP result.
	TimeAllowedExceeded
)

func (k QueryResultKind) String() string {
	switch k {
	case Success:
		return "SUCCESS"
	case RetryLater:
		return "RETRY_LATER"
	case ProtocolError:
		return "PROTOCOL_ERROR"
	case TimeAllowedExceeded:
		return "TIME_ALLOWED_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// QueryResult is the tagged outcome of one ExecuteQuery call.
type QueryResult struct {
	Kind      QueryResultKind
	Signal    TimeSignal // only meaningful when Kind == Success
	Cause     error      // underlying cause for RetryLater / ProtocolError
	DebugInfo DebugInfo
}

// TimeSignal is the computed result of a successful SNTP exchange.
type TimeSignal struct {
	// ResultTicks is the client ticker reading taken when the response
	// was received (T_resp).
	ResultTicks chrono.Ticks
	// ResultInstant is the corrected wall-clock Instant: I_resp + Offset.
	ResultInstant chrono.Instant
	// Offset is the computed clock offset ((T2-T1)+(T3-T4))/2.
	Offset chrono.Duration
	// RoundTrip is the computed round-trip delay (T4-T1)-(T3-T2), clamped
	// to zero if negative (clock jitter), but always reported.
	RoundTrip chrono.Duration
	// RootDistance is (RootDelay + RoundTrip)/2 + RootDispersion, a
	// telemetry-only estimate of total synchronization error.
	RootDistance chrono.Duration
	Stratum      uint8
	LeapIndicator uint8
	ReferenceIdentifier string
}

// DebugInfo captures per-attempt diagnostics alongside a QueryResult, so
// callers and logs can see exactly what was tried.
type DebugInfo struct {
	// OperationResults is the ordered list of per-IP network attempts,
	// matching the count and order of IPs actually attempted.
	OperationResults []transport.OperationResult
	RequestHeader    wire.Header
	// ResponseHeader is nil if no response was ever decoded (e.g. a
	// timeout or send failure).
	ResponseHeader *wire.Header
}

// KissCode is the 4-byte ASCII reason code a server embeds in the
// reference identifier field of a stratum-0 Kiss-o'-Death response. It is
// surfaced purely for human-readable logging; the engine never branches
// on its specific value.
type KissCode string

// Well-known Kiss-o'-Death codes, per RFC 5905 §7.4.
const (
	KissRateExceeded    KissCode = "RATE"
	KissAccessDenied    KissCode = "DENY"
	KissAccessRestricted KissCode = "RSTR"
	KissNoKey           KissCode = "NKEY"
	KissAuthFailed      KissCode = "AUTH"
	KissAutoKeyFailed   KissCode = "AUTO"
	KissCryptoFailed    KissCode = "CRYP"
	KissStepRequired    KissCode = "STEP"
)

var kissDescriptions = map[KissCode]string{
	KissRateExceeded:     "client is sending too fast; back off",
	KissAccessDenied:     "access denied by server policy",
	KissAccessRestricted: "access restricted by server policy",
	KissNoKey:            "no key found for requested symmetric association",
	KissAuthFailed:       "authentication failed",
	KissAutoKeyFailed:    "autokey sequence failed",
	KissCryptoFailed:     "cryptographic authentication or identification failed",
	KissStepRequired:     "a step change in system time is required",
}

// String describes the code, falling back to the raw identifier for
// codes outside the well-known table.
func (k KissCode) String() string {
	if desc, ok := kissDescriptions[k]; ok {
		return string(k) + " (" + desc + ")"
	}
	return string(k)
}

// KissCodeFromReferenceIdentifier trims trailing NULs/spaces from a
// stratum-0 response's reference identifier and wraps it as a KissCode.
func KissCodeFromReferenceIdentifier(refID string) KissCode {
	return KissCode(strings.TrimRight(refID, "\x00 "))
}
