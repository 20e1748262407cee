package sntp

import (
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/internal/metrics"
	"github.com/coriolis-ntp/sntp/internal/sntplog"
	"github.com/coriolis-ntp/sntp/transport"
	"github.com/coriolis-ntp/sntp/wire"
)

// defaultNtpPort is the standard UDP port for NTP/SNTP.
const defaultNtpPort = 123

// defaultClientVersion is the NTP version the client reports in requests
// it builds, absent an explicit WithClientVersion override.
const defaultClientVersion = 4

// EngineBuilder configures and constructs an Engine. Use NewEngineBuilder
// to obtain one; the zero value is not usable.
type EngineBuilder struct {
	host    string
	port    int
	timeout *chrono.Duration

	logger        sntplog.Logger
	instantSource chrono.InstantSource
	ticker        chrono.Ticker
	network       transport.Network
	recorder      metrics.Recorder
	rng           io.Reader

	minimize      bool
	clientVersion uint8
	eraThreshold  *chrono.Instant
	ttl           int

	err error
}

// NewEngineBuilder returns an EngineBuilder with the spec's documented
// defaults: data minimization on, client version 4, the system network,
// ticker, instant source, and a crypto/rand-backed RNG.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{
		minimize:      true,
		clientVersion: defaultClientVersion,
		port:          defaultNtpPort,
	}
}

func (b *EngineBuilder) fail(err error) *EngineBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WithServerAddress sets the server host and UDP port to query. If port
// is zero, the default NTP port (123) is used.
func (b *EngineBuilder) WithServerAddress(host string, port int) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if host == "" {
		return b.fail(fmt.Errorf("sntp: server address host must not be empty"))
	}
	b.host = host
	if port != 0 {
		b.port = port
	}
	return b
}

// WithResponseTimeout sets the per-receive UDP timeout applied on every
// attempt. Required: Build fails without it.
func (b *EngineBuilder) WithResponseTimeout(timeout chrono.Duration) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if timeout.Compare(chrono.Zero) <= 0 {
		return b.fail(fmt.Errorf("sntp: response timeout must be positive"))
	}
	b.timeout = &timeout
	return b
}

// WithLogger installs a custom Logger collaborator.
func (b *EngineBuilder) WithLogger(logger sntplog.Logger) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.logger = logger
	return b
}

// WithInstantSource installs a custom InstantSource collaborator.
func (b *EngineBuilder) WithInstantSource(src chrono.InstantSource) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.instantSource = src
	return b
}

// WithTicker installs a custom Ticker collaborator.
func (b *EngineBuilder) WithTicker(ticker chrono.Ticker) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.ticker = ticker
	return b
}

// WithNetwork installs a custom Network collaborator (resolver + UDP
// socket factory).
func (b *EngineBuilder) WithNetwork(network transport.Network) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.network = network
	return b
}

// WithMetricsRecorder installs a metrics.Recorder collaborator; the
// default Engine uses metrics.Noop.
func (b *EngineBuilder) WithMetricsRecorder(recorder metrics.Recorder) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.recorder = recorder
	return b
}

// WithDataMinimization enables or disables low-bit randomization of the
// transmit timestamp. Defaults to enabled.
func (b *EngineBuilder) WithDataMinimization(enabled bool) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.minimize = enabled
	return b
}

// WithClientVersion sets the NTP version (3 or 4) the client reports in
// its requests. Defaults to 4.
func (b *EngineBuilder) WithClientVersion(version uint8) *EngineBuilder {
	if b.err != nil {
		return b
	}
	if version != 3 && version != 4 {
		return b.fail(fmt.Errorf("sntp: client version must be 3 or 4, got %d", version))
	}
	b.clientVersion = version
	return b
}

// WithEraThreshold overrides the default NTP era disambiguation
// threshold, for clients that know they are operating far outside the
// 1968-2104 window the default covers.
func (b *EngineBuilder) WithEraThreshold(threshold chrono.Instant) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.eraThreshold = &threshold
	return b
}

// WithRand installs a custom entropy source for data minimization.
// Defaults to crypto/rand.Reader; tests may substitute a deterministic
// reader, at the cost of the spec's cryptographic-strength requirement.
func (b *EngineBuilder) WithRand(rng io.Reader) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.rng = rng
	return b
}

// WithTTL sets the IP TTL applied to outgoing packets via the default
// transport's ipv4 socket option. Zero (the default) leaves the system
// default TTL untouched.
func (b *EngineBuilder) WithTTL(ttl int) *EngineBuilder {
	if b.err != nil {
		return b
	}
	b.ttl = ttl
	return b
}

// Build validates the configuration and constructs an Engine.
func (b *EngineBuilder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.host == "" {
		return nil, fmt.Errorf("sntp: server address is required")
	}
	if b.timeout == nil {
		return nil, ErrResponseTimeoutRequired
	}

	network := b.network
	if network == nil {
		network = &transport.SystemNetwork{TTL: b.ttl}
	}

	instantSource := b.instantSource
	if instantSource == nil {
		instantSource = chrono.SystemInstantSource{}
	}

	ticker := b.ticker
	if ticker == nil {
		ticker = chrono.NewSystemTicker()
	}

	logger := b.logger
	if logger == nil {
		logger = sntplog.Discard
	}

	recorder := b.recorder
	if recorder == nil {
		recorder = metrics.Noop
	}

	rng := b.rng
	if rng == nil {
		rng = rand.Reader
	}

	eraThreshold := wire.DefaultEraThreshold
	if b.eraThreshold != nil {
		eraThreshold = *b.eraThreshold
	}

	return &Engine{
		serverName:    net.JoinHostPort(b.host, strconv.Itoa(b.port)),
		host:          b.host,
		port:          b.port,
		responseTimeout: *b.timeout,
		logger:        logger,
		instantSource: instantSource,
		ticker:        ticker,
		network:       network,
		recorder:      recorder,
		rng:           rng,
		minimize:      b.minimize,
		clientVersion: b.clientVersion,
		eraThreshold:  eraThreshold,
	}, nil
}
