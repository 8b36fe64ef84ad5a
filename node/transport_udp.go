//go:build !tinygo

// Datagram transport adapters are host-only: baremetal targets speak
// serial, and the stdlib net package does not exist there.

package node

import (
	"net"

	"ledlink/link"
	"ledlink/protocol"
)

// DatagramLedSource polls a UDP socket for LED-channel datagrams. The
// socket's LED port carries both pixel frames and parameter updates,
// told apart by length.
type DatagramLedSource struct {
	sock  *link.UDPSocket
	codec *protocol.DatagramCodec
	buf   [link.MaxDatagramSize]byte
}

func NewDatagramLedSource(sock *link.UDPSocket) *DatagramLedSource {
	return &DatagramLedSource{sock: sock, codec: protocol.NewDatagramCodec()}
}

func (d *DatagramLedSource) Poll() Event {
	n, _, err := d.sock.Poll(d.buf[:])
	if err != nil || n == 0 {
		return Event{}
	}
	led, param, outcome := d.codec.Dispatch(d.buf[:n])
	if outcome != protocol.FrameAccepted {
		return Event{}
	}
	if led != nil {
		return Event{Kind: EventPixels, Pixels: led.Pixels[:]}
	}
	return Event{Kind: EventParams, Params: param}
}

func (d *DatagramLedSource) Stats() Stats {
	led := d.codec.LedStats()
	param := d.codec.ParamStats()
	return Stats{
		Accepted:  led.Accepted + param.Accepted,
		Skipped:   led.Skipped + param.Skipped,
		Corrupted: led.Corrupted,
		Invalid:   led.Invalid,
	}
}

// DatagramLedSink sends LED-channel messages to a fixed peer address.
type DatagramLedSink struct {
	sock *link.UDPSocket
	peer *net.UDPAddr
}

func NewDatagramLedSink(sock *link.UDPSocket, peer *net.UDPAddr) *DatagramLedSink {
	return &DatagramLedSink{sock: sock, peer: peer}
}

func (d *DatagramLedSink) SendPixels(pixels *[protocol.PixelBytes]byte, counter uint8) error {
	dg := protocol.LedDatagram{Counter: counter, Pixels: *pixels}
	return d.sock.WriteTo(dg.Encode(), d.peer)
}

func (d *DatagramLedSink) SendParams(p *protocol.ParamUpdate) error {
	return d.sock.WriteTo(p.Encode(), d.peer)
}

// DatagramButtonSource polls the button port socket.
type DatagramButtonSource struct {
	sock  *link.UDPSocket
	codec *protocol.DatagramCodec
	buf   [link.MaxDatagramSize]byte
}

func NewDatagramButtonSource(sock *link.UDPSocket) *DatagramButtonSource {
	return &DatagramButtonSource{sock: sock, codec: protocol.NewDatagramCodec()}
}

func (d *DatagramButtonSource) Poll() (*protocol.ButtonFrame, bool) {
	n, _, err := d.sock.Poll(d.buf[:])
	if err != nil || n == 0 {
		return nil, false
	}
	b, outcome := d.codec.DecodeButton(d.buf[:n])
	if outcome != protocol.FrameAccepted {
		return nil, false
	}
	return b, true
}

// DatagramButtonSink sends button frames to a fixed peer address.
type DatagramButtonSink struct {
	sock *link.UDPSocket
	peer *net.UDPAddr
}

func NewDatagramButtonSink(sock *link.UDPSocket, peer *net.UDPAddr) *DatagramButtonSink {
	return &DatagramButtonSink{sock: sock, peer: peer}
}

func (d *DatagramButtonSink) Send(b *protocol.ButtonFrame) error {
	return d.sock.WriteTo(b.Encode(), d.peer)
}
