package link

import (
	"fmt"
	"net"
	"time"
)

// MaxDatagramSize comfortably holds the largest protocol message.
// Receive buffers of this size never truncate a valid datagram.
const MaxDatagramSize = 512

// UDPSocket is a non-blocking datagram endpoint. Every read is a poll:
// when no datagram is pending it returns immediately with n == 0, so
// the tick loop never stalls on the network.
type UDPSocket struct {
	conn *net.UDPConn
}

// ListenUDP binds a socket on the given local port. Port 0 asks the OS
// for an ephemeral port (sender side).
func ListenUDP(port int) (*UDPSocket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("bind udp port %d: %w", port, err)
	}
	return &UDPSocket{conn: conn}, nil
}

// pollDeadline is how long one Poll may wait for a pending datagram.
// Long enough that a queued packet is always picked up, short enough
// that an idle socket never stalls the tick loop.
const pollDeadline = time.Millisecond

// Poll performs a near-immediate read of one datagram. Returns n == 0
// with a nil error when nothing is pending. The deadline must be in
// the future: an already-expired deadline fails the read before the
// queue is ever consulted.
func (s *UDPSocket) Poll(buf []byte) (int, *net.UDPAddr, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(pollDeadline)); err != nil {
		return 0, nil, err
	}

	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	return n, addr, nil
}

// WriteTo sends one datagram, exactly one packet per datagram.
func (s *UDPSocket) WriteTo(buf []byte, addr *net.UDPAddr) error {
	_, err := s.conn.WriteTo(buf, addr)
	return err
}

// LocalPort returns the bound local port.
func (s *UDPSocket) LocalPort() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close closes the socket.
func (s *UDPSocket) Close() error {
	return s.conn.Close()
}

// PeerAddr builds the datagram destination from the 4-byte address in
// a bootstrap packet and a port.
func PeerAddr(ip [4]byte, port uint16) *net.UDPAddr {
	return &net.UDPAddr{
		IP:   net.IPv4(ip[0], ip[1], ip[2], ip[3]),
		Port: int(port),
	}
}
