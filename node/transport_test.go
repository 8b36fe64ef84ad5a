package node

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledlink/link"
	"ledlink/protocol"
)

func TestSerialLedSourceRaw(t *testing.T) {
	src := NewSerialLedSource(ModeRaw)

	var f protocol.LedFrame
	f.Counter = 1
	for i := range f.Pixels {
		f.Pixels[i] = byte(i)
	}

	// Garbage before the frame exercises the sync search.
	src.Write([]byte{0x00, 0xFF, 0xAA, 0x13})
	src.Write(f.Encode())

	ev := src.Poll()
	require.Equal(t, EventPixels, ev.Kind)
	assert.Equal(t, f.Pixels[:], ev.Pixels)

	s := src.Stats()
	assert.Equal(t, uint32(1), s.Accepted)
	assert.Equal(t, uint32(0), s.Corrupted)
}

func TestSerialLedSourceParametric(t *testing.T) {
	src := NewSerialLedSource(ModeParametric)

	u := protocol.ParamUpdate{Anim: protocol.AnimSolid, Counter: 1, P1: 120, P2: 1, P3: 0.5}
	src.Write([]byte{0x42, 0x42})
	src.Write(u.Encode())

	ev := src.Poll()
	require.Equal(t, EventParams, ev.Kind)
	assert.Equal(t, protocol.AnimSolid, ev.Params.Anim)
	assert.InDelta(t, 120, ev.Params.P1, 1e-6)

	// Nothing further buffered.
	assert.Equal(t, EventNone, src.Poll().Kind)
}

func TestSerialLedSourceParametricCorrupt(t *testing.T) {
	src := NewSerialLedSource(ModeParametric)

	buf := (&protocol.ParamUpdate{Anim: protocol.AnimWave, Counter: 1}).Encode()
	buf[len(buf)-1] ^= 0xFF
	src.Write(buf)

	assert.Equal(t, EventNone, src.Poll().Kind)
	assert.Equal(t, uint32(1), src.Stats().Corrupted)

	// A clean update after the corruption still gets through.
	src.Write((&protocol.ParamUpdate{Anim: protocol.AnimWave, Counter: 2}).Encode())
	ev := src.Poll()
	require.Equal(t, EventParams, ev.Kind)
	assert.Equal(t, uint8(2), ev.Params.Counter)
}

func TestSerialButtonSource(t *testing.T) {
	src := NewSerialButtonSource()

	frame := protocol.ButtonFrame{A: true, D: true}
	src.Write([]byte{0x99})
	src.Write(frame.Encode())

	b, ok := src.Poll()
	require.True(t, ok)
	assert.Equal(t, frame, *b)

	_, ok = src.Poll()
	assert.False(t, ok)
}

func TestSerialSinksRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSerialLedSink(&buf)

	var pixels [protocol.PixelBytes]byte
	pixels[0] = 0xAB
	require.NoError(t, sink.SendPixels(&pixels, 7))

	f, err := protocol.DecodeLedFrame(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint8(7), f.Counter)
	assert.Equal(t, byte(0xAB), f.Pixels[0])

	buf.Reset()
	require.NoError(t, sink.SendParams(&protocol.ParamUpdate{Anim: protocol.AnimRainbow, Counter: 3}))
	u, err := protocol.DecodeParamUpdate(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, protocol.AnimRainbow, u.Anim)

	buf.Reset()
	btnSink := NewSerialButtonSink(&buf)
	require.NoError(t, btnSink.Send(&protocol.ButtonFrame{B: true}))
	b, err := protocol.DecodeButtonFrame(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, b.B)
}

// pollEvent retries a datagram source until delivery, loopback is
// asynchronous.
func pollEvent(t *testing.T, src LedSource) Event {
	t.Helper()
	for i := 0; i < 100; i++ {
		if ev := src.Poll(); ev.Kind != EventNone {
			return ev
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no event delivered")
	return Event{}
}

func TestDatagramLedRoundTrip(t *testing.T) {
	rx, err := link.ListenUDP(0)
	require.NoError(t, err)
	defer rx.Close()

	tx, err := link.ListenUDP(0)
	require.NoError(t, err)
	defer tx.Close()

	peer := link.PeerAddr([4]byte{127, 0, 0, 1}, uint16(rx.LocalPort()))
	sink := NewDatagramLedSink(tx, peer)
	src := NewDatagramLedSource(rx)

	var pixels [protocol.PixelBytes]byte
	pixels[10] = 0x5A
	require.NoError(t, sink.SendPixels(&pixels, 1))

	ev := pollEvent(t, src)
	require.Equal(t, EventPixels, ev.Kind)
	assert.Equal(t, byte(0x5A), ev.Pixels[10])

	require.NoError(t, sink.SendParams(&protocol.ParamUpdate{Anim: protocol.AnimBreathing, Counter: 1, P2: 1}))
	ev = pollEvent(t, src)
	require.Equal(t, EventParams, ev.Kind)
	assert.Equal(t, protocol.AnimBreathing, ev.Params.Anim)

	s := src.Stats()
	assert.Equal(t, uint32(2), s.Accepted)
}

func TestDatagramButtonRoundTrip(t *testing.T) {
	rx, err := link.ListenUDP(0)
	require.NoError(t, err)
	defer rx.Close()

	tx, err := link.ListenUDP(0)
	require.NoError(t, err)
	defer tx.Close()

	peer := link.PeerAddr([4]byte{127, 0, 0, 1}, uint16(rx.LocalPort()))
	sink := NewDatagramButtonSink(tx, peer)
	src := NewDatagramButtonSource(rx)

	require.NoError(t, sink.Send(&protocol.ButtonFrame{C: true}))

	var got *protocol.ButtonFrame
	for i := 0; i < 100; i++ {
		if b, ok := src.Poll(); ok {
			got = b
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.NotNil(t, got)
	assert.True(t, got.C)
}
