package node

import (
	"errors"
	"io"
	"sync"

	"ledlink/protocol"
)

// EventKind tags what a LedSource poll produced.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventPixels
	EventParams
)

// Event is one validated inbound message. Pixels is only valid until
// the next Poll call.
type Event struct {
	Kind   EventKind
	Pixels []byte
	Params *protocol.ParamUpdate
}

// Stats is the transport-independent loss accounting snapshot.
type Stats struct {
	Accepted     uint32
	Skipped      uint32
	Corrupted    uint32
	Invalid      uint32
	SyncFailures uint32
}

// LedSource yields validated LED-channel messages, at most one per
// Poll, never blocking.
type LedSource interface {
	Poll() Event
	Stats() Stats
}

// LedSink transmits LED-channel messages.
type LedSink interface {
	SendPixels(pixels *[protocol.PixelBytes]byte, counter uint8) error
	SendParams(p *protocol.ParamUpdate) error
}

// ButtonSource yields validated button frames, at most one per Poll.
type ButtonSource interface {
	Poll() (*protocol.ButtonFrame, bool)
}

// ButtonSink transmits button frames.
type ButtonSink interface {
	Send(b *protocol.ButtonFrame) error
}

// Pump copies r into w until r fails, typically as a goroutine moving
// bytes from a serial port into a serial source. Write errors are
// ignored: the sources shed load instead of applying backpressure.
func Pump(r io.Reader, w io.Writer) {
	buf := make([]byte, 512)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			w.Write(buf[:n]) //nolint:errcheck
		}
		if err != nil {
			return
		}
	}
}

// serialFifoSize holds a few frames of headroom over the largest
// message so a tick's worth of 60 fps traffic fits.
const serialFifoSize = 4 * protocol.LedFrameSize

// SerialLedSource recovers LED-channel messages from a raw byte
// stream. In raw mode it runs the frame deframer; in parametric mode
// it scans for 17-byte parameter updates by magic. Feed it bytes via
// Write (safe from a reader goroutine) and consume via Poll.
type SerialLedSource struct {
	mu   sync.Mutex
	fifo *protocol.FifoBuffer
	mode Mode

	deframer *protocol.Deframer // raw mode

	paramTracker *protocol.SequenceTracker // parametric mode
	corrupted    uint32
}

func NewSerialLedSource(mode Mode) *SerialLedSource {
	return &SerialLedSource{
		fifo:         protocol.NewFifoBuffer(serialFifoSize),
		mode:         mode,
		deframer:     protocol.NewDeframer(),
		paramTracker: protocol.NewSequenceTracker(protocol.ParamUpdateModulus),
	}
}

// Write feeds raw serial bytes. Bytes beyond the buffer capacity are
// dropped; the stream resynchronizes on the next sync pair.
func (s *SerialLedSource) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.fifo.Write(p)
	s.mu.Unlock()
	return len(p), nil
}

func (s *SerialLedSource) Poll() Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeRaw {
		outcome, frame := s.deframer.Poll(s.fifo)
		if outcome == protocol.FrameAccepted && frame != nil {
			return Event{Kind: EventPixels, Pixels: frame.Pixels[:]}
		}
		return Event{}
	}
	return s.pollParam()
}

// pollParam scans for one parameter update. A matched magic with a bad
// CRC drops the magic pair and counts as corruption; anything else
// slides the window one byte.
func (s *SerialLedSource) pollParam() Event {
	for s.fifo.Available() >= protocol.ParamUpdateSize {
		data := s.fifo.Data()
		p, err := protocol.DecodeParamUpdate(data[:protocol.ParamUpdateSize])
		if err == nil {
			s.fifo.Pop(protocol.ParamUpdateSize)
			s.paramTracker.Accept(p.Counter)
			return Event{Kind: EventParams, Params: p}
		}
		if errors.Is(err, protocol.ErrBadCRC) {
			s.corrupted++
			s.fifo.Pop(2)
			continue
		}
		s.fifo.Pop(1)
	}
	return Event{}
}

func (s *SerialLedSource) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeRaw {
		ls := s.deframer.Stats()
		return Stats{
			Accepted:     ls.Accepted,
			Skipped:      ls.Skipped,
			Corrupted:    ls.Corrupted,
			SyncFailures: ls.SyncFailures,
		}
	}
	return Stats{
		Accepted:  s.paramTracker.Accepted(),
		Skipped:   s.paramTracker.Skipped(),
		Corrupted: s.corrupted,
	}
}

// SerialLedSink writes LED-channel messages to a byte stream.
type SerialLedSink struct {
	w io.Writer
}

func NewSerialLedSink(w io.Writer) *SerialLedSink {
	return &SerialLedSink{w: w}
}

func (s *SerialLedSink) SendPixels(pixels *[protocol.PixelBytes]byte, counter uint8) error {
	f := protocol.LedFrame{Pixels: *pixels, Counter: counter}
	_, err := s.w.Write(f.Encode())
	return err
}

func (s *SerialLedSink) SendParams(p *protocol.ParamUpdate) error {
	_, err := s.w.Write(p.Encode())
	return err
}

// SerialButtonSource scans a byte stream for 7-byte button frames.
// Feed it via Write, consume via Poll.
type SerialButtonSource struct {
	mu        sync.Mutex
	fifo      *protocol.FifoBuffer
	accepted  uint32
	corrupted uint32
}

func NewSerialButtonSource() *SerialButtonSource {
	return &SerialButtonSource{fifo: protocol.NewFifoBuffer(64 * protocol.ButtonFrameSize)}
}

func (s *SerialButtonSource) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.fifo.Write(p)
	s.mu.Unlock()
	return len(p), nil
}

func (s *SerialButtonSource) Poll() (*protocol.ButtonFrame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.fifo.Available() >= protocol.ButtonFrameSize {
		data := s.fifo.Data()
		b, err := protocol.DecodeButtonFrame(data[:protocol.ButtonFrameSize])
		if err == nil {
			s.fifo.Pop(protocol.ButtonFrameSize)
			s.accepted++
			return b, true
		}
		if errors.Is(err, protocol.ErrBadCRC) {
			s.corrupted++
			s.fifo.Pop(2)
			continue
		}
		s.fifo.Pop(1)
	}
	return nil, false
}

// SerialButtonSink writes button frames to a byte stream.
type SerialButtonSink struct {
	w io.Writer
}

func NewSerialButtonSink(w io.Writer) *SerialButtonSink {
	return &SerialButtonSink{w: w}
}

func (s *SerialButtonSink) Send(b *protocol.ButtonFrame) error {
	_, err := s.w.Write(b.Encode())
	return err
}
