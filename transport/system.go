package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/coriolis-ntp/sntp/chrono"
)

// SystemNetwork is the default Network implementation, backed by Go's
// standard net package.
type SystemNetwork struct {
	// TTL, when non-zero, is applied to every socket this Network
	// creates via golang.org/x/net/ipv4.
	TTL int
}

// NewSystemNetwork returns a SystemNetwork with no TTL override.
func NewSystemNetwork() *SystemNetwork {
	return &SystemNetwork{}
}

// GetAllByName resolves name using the default resolver.
func (n *SystemNetwork) GetAllByName(name string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(context.Background(), name)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

// CreateUDPSocket opens a new UDP socket on a system-chosen local port,
// applying n.TTL if set.
func (n *SystemNetwork) CreateUDPSocket() (UdpSocket, error) {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}
	if n.TTL != 0 {
		ipcon := ipv4.NewConn(conn)
		if err := ipcon.SetTTL(n.TTL); err != nil {
			conn.Close()
			return nil, fmt.Errorf("transport: set TTL: %w", err)
		}
	}
	return &SystemUDPSocket{conn: conn}, nil
}

// SystemUDPSocket is the default UdpSocket, backed by a *net.UDPConn.
type SystemUDPSocket struct {
	conn   *net.UDPConn
	closed bool
}

// LocalSocketAddress returns the socket's local address.
func (s *SystemUDPSocket) LocalSocketAddress() net.Addr {
	return s.conn.LocalAddr()
}

// SetSoTimeout sets the deadline for the next Receive call.
func (s *SystemUDPSocket) SetSoTimeout(timeout chrono.Duration) error {
	millis, err := timeout.Millis()
	if err != nil {
		return fmt.Errorf("transport: timeout out of range: %w", err)
	}
	return s.conn.SetReadDeadline(time.Now().Add(time.Duration(millis) * time.Millisecond))
}

// Send writes datagram to the given address and port.
func (s *SystemUDPSocket) Send(addr net.IP, port int, datagram []byte) error {
	_, err := s.conn.WriteToUDP(datagram, &net.UDPAddr{IP: addr, Port: port})
	return err
}

// Receive blocks until a datagram arrives or the socket's read deadline
// elapses, in which case it returns ErrTimeout.
func (s *SystemUDPSocket) Receive(buf []byte) (int, net.Addr, error) {
	n, from, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, ErrTimeout
		}
		return 0, nil, err
	}
	return n, from, nil
}

// Close releases the underlying socket. Safe to call more than once.
func (s *SystemUDPSocket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// IsClosed reports whether Close has already been called.
func (s *SystemUDPSocket) IsClosed() bool {
	return s.closed
}
