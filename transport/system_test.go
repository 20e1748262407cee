package transport

import (
	"net"
	"testing"

	"github.com/coriolis-ntp/sntp/chrono"
	"github.com/stretchr/testify/require"
)

func TestSystemNetworkGetAllByNameResolvesLoopback(t *testing.T) {
	n := NewSystemNetwork()
	ips, err := n.GetAllByName("localhost")
	require.NoError(t, err)
	require.NotEmpty(t, ips)
}

func TestSystemUDPSocketSendReceiveRoundTrip(t *testing.T) {
	n := NewSystemNetwork()

	server, err := n.CreateUDPSocket()
	require.NoError(t, err)
	defer server.Close()

	client, err := n.CreateUDPSocket()
	require.NoError(t, err)
	defer client.Close()

	serverAddr := server.LocalSocketAddress().(*net.UDPAddr)

	require.NoError(t, client.Send(serverAddr.IP, serverAddr.Port, []byte("ping")))

	buf := make([]byte, 16)
	timeout, err := chrono.NewDuration(1, 0)
	require.NoError(t, err)
	require.NoError(t, server.SetSoTimeout(timeout))

	n2, from, err := server.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n2]))
	require.NotNil(t, from)
}

func TestSystemUDPSocketReceiveTimeout(t *testing.T) {
	n := NewSystemNetwork()
	s, err := n.CreateUDPSocket()
	require.NoError(t, err)
	defer s.Close()

	timeout, err := chrono.NewDuration(0, 10_000_000) // 10ms
	require.NoError(t, err)
	require.NoError(t, s.SetSoTimeout(timeout))

	buf := make([]byte, 16)
	_, _, err = s.Receive(buf)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestSystemUDPSocketCloseIsIdempotent(t *testing.T) {
	n := NewSystemNetwork()
	s, err := n.CreateUDPSocket()
	require.NoError(t, err)

	require.False(t, s.IsClosed())
	require.NoError(t, s.Close())
	require.True(t, s.IsClosed())
	require.NoError(t, s.Close(), "Close must be safe to call twice")
}

func TestSystemNetworkSetsTTL(t *testing.T) {
	n := &SystemNetwork{TTL: 64}
	s, err := n.CreateUDPSocket()
	require.NoError(t, err)
	defer s.Close()
}
