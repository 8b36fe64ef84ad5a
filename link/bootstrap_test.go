package link

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledlink/protocol"
)

func testBootstrap() *protocol.Bootstrap {
	return &protocol.Bootstrap{
		SSID:       "lab-net",
		Password:   "correct horse",
		PeerIP:     [4]byte{10, 0, 0, 7},
		LedPort:    protocol.DefaultLedPort,
		ButtonPort: protocol.DefaultButtonPort,
	}
}

// chunkedReader returns its contents a few bytes per Read, the way a
// serial port trickles data in.
type chunkedReader struct {
	data  []byte
	chunk int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, nil
	}
	n := c.chunk
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestBootstrapRoundTripOverWire(t *testing.T) {
	var wire bytes.Buffer
	require.NoError(t, SendBootstrap(&wire, testBootstrap()))
	require.Equal(t, protocol.BootstrapSize, wire.Len())

	got, err := ReceiveBootstrap(&chunkedReader{data: wire.Bytes(), chunk: 13}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, testBootstrap(), got)
}

func TestBootstrapTimeout(t *testing.T) {
	// A reader that never produces data must trip the deadline.
	empty := &chunkedReader{}

	start := time.Now()
	_, err := ReceiveBootstrap(empty, 50*time.Millisecond)
	require.ErrorIs(t, err, ErrBootstrapTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBootstrapPartialThenTimeout(t *testing.T) {
	buf, err := testBootstrap().Encode()
	require.NoError(t, err)

	// Half a packet is never enough.
	partial := &chunkedReader{data: buf[:protocol.BootstrapSize/2], chunk: 16}
	_, err = ReceiveBootstrap(partial, 50*time.Millisecond)
	require.ErrorIs(t, err, ErrBootstrapTimeout)
}

func TestBootstrapCorruptIsFatal(t *testing.T) {
	buf, err := testBootstrap().Encode()
	require.NoError(t, err)
	buf[40] ^= 0x10

	_, err = ReceiveBootstrap(&chunkedReader{data: buf, chunk: 32}, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, protocol.ErrBadCRC)
}

func TestBootstrapBadSyncIsFatal(t *testing.T) {
	buf, err := testBootstrap().Encode()
	require.NoError(t, err)
	buf[0] = 0x00

	_, err = ReceiveBootstrap(&chunkedReader{data: buf, chunk: 32}, time.Second)
	assert.ErrorIs(t, err, protocol.ErrBadSync)
}
