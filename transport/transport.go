// Package transport abstracts the UDP socket operations the SNTP engine
// needs (name resolution, datagram send/receive with a timeout) behind
// collaborator interfaces, so the engine can be driven against a fake
// network in tests and against the real stack in production.
package transport

import (
	"errors"
	"net"

	"github.com/coriolis-ntp/sntp/chrono"
)

// ErrTimeout is returned by UdpSocket.Receive when no datagram arrived
// before the configured timeout elapsed. It is distinguishable from other
// I/O failures via errors.Is, matching the spec's requirement that a
// receive timeout be a transient, identifiable error distinct from other
// I/O errors.
var ErrTimeout = errors.New("transport: receive timed out")

// Network resolves server names to addresses and creates UDP sockets. The
// default implementation is SystemNetwork; tests substitute a fake.
type Network interface {
	// GetAllByName resolves name to the ordered list of IP addresses a
	// caller should attempt, in the order they should be tried.
	GetAllByName(name string) ([]net.IP, error)

	// CreateUDPSocket creates a new UdpSocket bound to a system-chosen
	// local port and not connected to any remote address.
	CreateUDPSocket() (UdpSocket, error)
}

// UdpSocket is a single UDP datagram socket. Send and Receive block.
// Close is idempotent and safe to call concurrently with an in-flight
// Receive, so that a caller on a separate cancellation path can
// unblock it.
type UdpSocket interface {
	// LocalSocketAddress returns the socket's local address.
	LocalSocketAddress() net.Addr

	// SetSoTimeout sets the timeout applied to the next Receive call.
	SetSoTimeout(timeout chrono.Duration) error

	// Send transmits datagram to addr.
	Send(addr net.IP, port int, datagram []byte) error

	// Receive blocks until a datagram arrives or the configured timeout
	// elapses, in which case it returns ErrTimeout.
	Receive(buf []byte) (n int, from net.Addr, err error)

	// Close releases the socket. Safe to call more than once.
	Close() error

	// IsClosed reports whether Close has already been called.
	IsClosed() bool
}

// OperationResultKind classifies the outcome of a single per-IP network
// operation attempt.
type OperationResultKind int

const (
	// Success indicates the operation completed normally.
	Success OperationResultKind = iota
	// Failure indicates the operation failed. Whether the cluster runner
	// advances to the next IP or halts is decided by the per-IP
	// ServiceResult, not by this kind.
	Failure
	// TimeAllowedExceeded indicates the operation observed its time
	// budget expire mid-attempt.
	TimeAllowedExceeded
)

func (k OperationResultKind) String() string {
	switch k {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case TimeAllowedExceeded:
		return "TIME_ALLOWED_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// OperationResult records the outcome of one network attempt against one
// resolved socket address, for inclusion in a ClusteredServiceResult's
// per-attempt history.
type OperationResult struct {
	SocketAddress net.Addr
	Kind          OperationResultKind
	Cause         error
}
