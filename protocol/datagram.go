package protocol

import "errors"

// DatagramStats is a snapshot of one message-oriented receive channel.
type DatagramStats struct {
	Accepted  uint32
	Skipped   uint32
	Corrupted uint32 // CRC failures
	Invalid   uint32 // wrong size or magic
}

// DatagramCodec validates whole messages from a datagram transport.
// No resynchronization state exists: the transport delivers discrete
// messages, so every failure is a silent counted reject with nothing
// carried over to the next call.
//
// The LED port carries both LedDatagram and ParamUpdate messages;
// Dispatch tells them apart by exact length (201 vs 17 bytes).
type DatagramCodec struct {
	ledTracker   *SequenceTracker
	paramTracker *SequenceTracker

	corrupted uint32
	invalid   uint32
}

// NewDatagramCodec creates a codec with fresh trackers for the LED and
// parameter channels.
func NewDatagramCodec() *DatagramCodec {
	return &DatagramCodec{
		ledTracker:   NewSequenceTracker(LedFrameModulus),
		paramTracker: NewSequenceTracker(ParamUpdateModulus),
	}
}

// DecodeLed validates one datagram as an LED frame.
func (c *DatagramCodec) DecodeLed(buf []byte) (*LedDatagram, Outcome) {
	d, err := DecodeLedDatagram(buf)
	if err != nil {
		c.count(err)
		return nil, FrameRejected
	}
	c.ledTracker.Accept(d.Counter)
	return d, FrameAccepted
}

// DecodeParam validates one datagram as a parameter update.
func (c *DatagramCodec) DecodeParam(buf []byte) (*ParamUpdate, Outcome) {
	p, err := DecodeParamUpdate(buf)
	if err != nil {
		c.count(err)
		return nil, FrameRejected
	}
	c.paramTracker.Accept(p.Counter)
	return p, FrameAccepted
}

// DecodeButton validates one datagram as a button frame. Button frames
// carry no sequence number, so only the failure counters move.
func (c *DatagramCodec) DecodeButton(buf []byte) (*ButtonFrame, Outcome) {
	b, err := DecodeButtonFrame(buf)
	if err != nil {
		c.count(err)
		return nil, FrameRejected
	}
	return b, FrameAccepted
}

// Dispatch decodes a message from the LED port, which carries either
// full pixel frames or parameter updates. Exactly one of the returns
// is non-nil on acceptance.
func (c *DatagramCodec) Dispatch(buf []byte) (*LedDatagram, *ParamUpdate, Outcome) {
	switch len(buf) {
	case LedDatagramSize:
		d, outcome := c.DecodeLed(buf)
		return d, nil, outcome
	case ParamUpdateSize:
		p, outcome := c.DecodeParam(buf)
		return nil, p, outcome
	default:
		c.invalid++
		return nil, nil, FrameRejected
	}
}

func (c *DatagramCodec) count(err error) {
	if errors.Is(err, ErrBadCRC) {
		c.corrupted++
		return
	}
	c.invalid++
}

// LedStats returns the LED channel snapshot. The corrupted and invalid
// counters are shared across channels on the same socket.
func (c *DatagramCodec) LedStats() DatagramStats {
	return DatagramStats{
		Accepted:  c.ledTracker.Accepted(),
		Skipped:   c.ledTracker.Skipped(),
		Corrupted: c.corrupted,
		Invalid:   c.invalid,
	}
}

// ParamStats returns the parameter channel snapshot.
func (c *DatagramCodec) ParamStats() DatagramStats {
	return DatagramStats{
		Accepted:  c.paramTracker.Accepted(),
		Skipped:   c.paramTracker.Skipped(),
		Corrupted: c.corrupted,
		Invalid:   c.invalid,
	}
}
