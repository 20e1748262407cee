package sntp

import "errors"

// ErrUnknownHost is returned by ExecuteQuery when the configured server
// address fails to resolve. It is bubbled as a distinct Go error rather
// than folded into QueryResult, per the error handling design: resolver
// failure is not a per-IP network outcome, it means there were no IPs to
// attempt at all.
var ErrUnknownHost = errors.New("sntp: unknown host")

// ErrResponseTimeoutRequired is returned by EngineBuilder.Build when no
// response timeout was configured.
var ErrResponseTimeoutRequired = errors.New("sntp: response timeout is required")
