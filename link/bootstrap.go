// Package link carries packets between the two nodes: the one-shot
// serial bootstrap handshake and the UDP datagram transport used once
// the consumer has joined the network.
package link

import (
	"errors"
	"fmt"
	"io"
	"time"

	"ledlink/protocol"
)

var (
	// ErrBootstrapTimeout means no complete bootstrap packet arrived
	// within the deadline. Fatal to startup.
	ErrBootstrapTimeout = errors.New("timed out waiting for bootstrap packet")
)

// DefaultBootstrapTimeout bounds the startup wait for credentials.
const DefaultBootstrapTimeout = 30 * time.Second

const bootstrapPollInterval = 10 * time.Millisecond

// SendBootstrap transmits the bootstrap packet once. The serial side
// sends exactly one copy at startup; there is no acknowledgement.
func SendBootstrap(w io.Writer, b *protocol.Bootstrap) error {
	buf, err := b.Encode()
	if err != nil {
		return fmt.Errorf("encode bootstrap: %w", err)
	}

	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("write bootstrap: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("incomplete bootstrap write: %d/%d bytes", n, len(buf))
	}
	return nil
}

// ReceiveBootstrap accumulates bytes from r until a full 107-byte
// bootstrap packet arrives, then validates sync bytes and CRC. This is
// the one blocking receive in the system; it is bounded by timeout and
// any failure is fatal to startup rather than counted.
//
// r is expected to be a serial port with a short read timeout so that
// Read returns promptly when no data is pending.
func ReceiveBootstrap(r io.Reader, timeout time.Duration) (*protocol.Bootstrap, error) {
	buf := make([]byte, protocol.BootstrapSize)
	have := 0
	deadline := time.Now().Add(timeout)

	for have < protocol.BootstrapSize {
		if time.Now().After(deadline) {
			return nil, ErrBootstrapTimeout
		}

		n, err := r.Read(buf[have:])
		have += n

		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read bootstrap: %w", err)
		}
		if n == 0 {
			time.Sleep(bootstrapPollInterval)
		}
	}

	b, err := protocol.DecodeBootstrap(buf)
	if err != nil {
		return nil, fmt.Errorf("invalid bootstrap packet: %w", err)
	}
	return b, nil
}
