// Package nettest provides deterministic fakes for transport.Network and
// transport.UdpSocket, plus helpers for scripting server responses in
// engine tests.
package nettest

import (
	"errors"
	"net"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/coriolis-ntp/sntp/transport"
	"github.com/coriolis-ntp/sntp/wire"
)

// FakeNetwork resolves to a fixed IP list (or a caller-supplied resolve
// function, to simulate resolver delay or failure) and hands out fake
// sockets from a pre-built queue, one per CreateUDPSocket call, in order.
type FakeNetwork struct {
	Resolve func(name string) ([]net.IP, error)
	Sockets []*FakeSocket
	next    int
}

// NewFakeNetwork returns a FakeNetwork that resolves to ips and hands out
// sockets in order.
func NewFakeNetwork(ips []net.IP, sockets ...*FakeSocket) *FakeNetwork {
	return &FakeNetwork{
		Resolve: func(string) ([]net.IP, error) { return ips, nil },
		Sockets: sockets,
	}
}

// GetAllByName implements transport.Network.
func (n *FakeNetwork) GetAllByName(name string) ([]net.IP, error) {
	return n.Resolve(name)
}

// CreateUDPSocket implements transport.Network, handing out the next
// queued FakeSocket.
func (n *FakeNetwork) CreateUDPSocket() (transport.UdpSocket, error) {
	if n.next >= len(n.Sockets) {
		return nil, errors.New("nettest: more sockets requested than configured")
	}
	s := n.Sockets[n.next]
	n.next++
	return s, nil
}

// FakeSocket is a scripted transport.UdpSocket: Respond, if set, is
// invoked with the exact bytes Send received and its return value is
// handed back from the next Receive call. SendErr/ReceiveErr, if set,
// are returned instead.
type FakeSocket struct {
	LocalAddr net.Addr
	SendErr   error
	ReceiveErr error
	Respond   func(sent []byte) ([]byte, error)

	closed   bool
	lastSent []byte
}

// LocalSocketAddress implements transport.UdpSocket.
func (s *FakeSocket) LocalSocketAddress() net.Addr { return s.LocalAddr }

// SetSoTimeout implements transport.UdpSocket; the fake ignores the
// timeout value entirely since it never actually blocks.
func (s *FakeSocket) SetSoTimeout(chrono.Duration) error { return nil }

// Send implements transport.UdpSocket.
func (s *FakeSocket) Send(ip net.IP, port int, datagram []byte) error {
	s.lastSent = append([]byte(nil), datagram...)
	return s.SendErr
}

// Receive implements transport.UdpSocket.
func (s *FakeSocket) Receive(buf []byte) (int, net.Addr, error) {
	if s.ReceiveErr != nil {
		return 0, nil, s.ReceiveErr
	}
	if s.Respond == nil {
		return 0, nil, transport.ErrTimeout
	}
	respBytes, err := s.Respond(s.lastSent)
	if err != nil {
		return 0, nil, err
	}
	n := copy(buf, respBytes)
	return n, s.LocalAddr, nil
}

// Close implements transport.UdpSocket.
func (s *FakeSocket) Close() error {
	s.closed = true
	return nil
}

// IsClosed implements transport.UdpSocket.
func (s *FakeSocket) IsClosed() bool { return s.closed }

// LastSent returns the most recent datagram passed to Send.
func (s *FakeSocket) LastSent() []byte { return s.lastSent }

// EchoResponse decodes a client request datagram and builds a server
// response header that echoes its transmit timestamp as the originate
// timestamp, with the given receive/transmit timestamps and stratum.
func EchoResponse(requestBytes []byte, stratum uint8, receive, transmit wire.Timestamp64) ([]byte, error) {
	req, err := wire.DecodeHeader(requestBytes)
	if err != nil {
		return nil, err
	}
	resp, err := wire.NewHeaderBuilder().
		SetLeapIndicator(0).
		SetVersionNumber(req.VersionNumber()).
		SetMode(4).
		SetStratum(stratum).
		SetPollIntervalExponent(0).
		SetPrecisionExponent(-20).
		SetRootDelay(chrono.Zero).
		SetRootDispersion(chrono.Zero).
		SetReferenceIdentifierString("GPS").
		SetReferenceTimestamp(wire.ZeroTimestamp64).
		SetOriginateTimestamp(req.TransmitTimestamp()).
		SetReceiveTimestamp(receive).
		SetTransmitTimestamp(transmit).
		Build()
	if err != nil {
		return nil, err
	}
	return resp.Bytes(), nil
}

// KissOfDeathResponse builds a stratum-0 response carrying code as the
// reference identifier, echoing the request's transmit timestamp.
func KissOfDeathResponse(requestBytes []byte, code string) ([]byte, error) {
	req, err := wire.DecodeHeader(requestBytes)
	if err != nil {
		return nil, err
	}
	resp, err := wire.NewHeaderBuilder().
		SetVersionNumber(req.VersionNumber()).
		SetMode(4).
		SetStratum(0).
		SetReferenceIdentifierString(code).
		SetOriginateTimestamp(req.TransmitTimestamp()).
		SetTransmitTimestamp(wire.TimestampFromInstant(mustNonZeroInstant())).
		Build()
	if err != nil {
		return nil, err
	}
	return resp.Bytes(), nil
}

func mustNonZeroInstant() chrono.Instant {
	i, err := chrono.NewInstant(1_700_000_000, 0)
	if err != nil {
		panic(err)
	}
	return i
}
