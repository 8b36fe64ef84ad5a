package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

var (
	ErrShortPacket  = errors.New("packet shorter than expected size")
	ErrLongPacket   = errors.New("packet longer than expected size")
	ErrBadSync      = errors.New("bad sync bytes")
	ErrBadMagic     = errors.New("bad magic field")
	ErrBadCRC       = errors.New("CRC mismatch")
	ErrFieldTooLong = errors.New("field exceeds wire width")
)

// AnimationType selects the parametric generator on the consumer.
// Values are part of the wire format and must not be renumbered.
type AnimationType uint8

const (
	AnimOff AnimationType = iota
	AnimSolid
	AnimRainbow
	AnimGradient
	AnimWave
	AnimBreathing
	AnimSparkle // reserved
	AnimFire    // reserved
	AnimStrobe  // reserved
)

// NextCounter advances a cyclic frame counter under the given modulus.
// Counters run 1..modulus inclusive; modulus wraps back to 1.
func NextCounter(last uint8, modulus uint8) uint8 {
	return (last % modulus) + 1
}

// LedFrame is one full pixel frame on the serial channel.
// Wire layout: sync0 sync1 | pixels[196] | counter | crc8 = 200 bytes.
type LedFrame struct {
	Pixels  [PixelBytes]byte
	Counter uint8
}

// Encode serializes the frame including sync bytes and CRC.
func (f *LedFrame) Encode() []byte {
	buf := make([]byte, LedFrameSize)
	buf[0] = SyncByte1
	buf[1] = SyncByte2
	copy(buf[2:2+PixelBytes], f.Pixels[:])
	buf[2+PixelBytes] = f.Counter
	buf[LedFrameSize-1] = CRC8(buf[:LedFrameSize-1])
	return buf
}

// DecodeLedFrame validates and decodes a complete 200-byte serial frame.
// The buffer must begin at the first sync byte.
func DecodeLedFrame(buf []byte) (*LedFrame, error) {
	if len(buf) < LedFrameSize {
		return nil, ErrShortPacket
	}
	if len(buf) > LedFrameSize {
		return nil, ErrLongPacket
	}
	if buf[0] != SyncByte1 || buf[1] != SyncByte2 {
		return nil, ErrBadSync
	}
	if CRC8(buf[:LedFrameSize-1]) != buf[LedFrameSize-1] {
		return nil, ErrBadCRC
	}

	f := &LedFrame{Counter: buf[2+PixelBytes]}
	copy(f.Pixels[:], buf[2:2+PixelBytes])
	return f, nil
}

// Pixel section views. Bounds are fixed by the strip geometry, so the
// slices are always in range.

func (f *LedFrame) LeftFin() []byte {
	return f.Pixels[:LeftFinLEDs*BytesPerLED]
}

func (f *LedFrame) RightFin() []byte {
	off := LeftFinLEDs * BytesPerLED
	return f.Pixels[off : off+RightFinLEDs*BytesPerLED]
}

func (f *LedFrame) Tongue() []byte {
	off := (LeftFinLEDs + RightFinLEDs) * BytesPerLED
	return f.Pixels[off : off+TongueLEDs*BytesPerLED]
}

func (f *LedFrame) Scale() []byte {
	off := (LeftFinLEDs + RightFinLEDs + TongueLEDs) * BytesPerLED
	return f.Pixels[off : off+ScaleLEDs*BytesPerLED]
}

// LedDatagram is one full pixel frame on the datagram channel. The
// transport delivers whole messages, so a magic field replaces the
// serial sync search.
// Wire layout: magic(2 LE) | counter | reserved | pixels[196] | crc8.
type LedDatagram struct {
	Counter uint8
	Pixels  [PixelBytes]byte
}

func (d *LedDatagram) Encode() []byte {
	buf := make([]byte, LedDatagramSize)
	binary.LittleEndian.PutUint16(buf[0:2], LedMagic)
	buf[2] = d.Counter
	buf[3] = 0 // reserved
	copy(buf[4:4+PixelBytes], d.Pixels[:])
	buf[LedDatagramSize-1] = CRC8(buf[:LedDatagramSize-1])
	return buf
}

func DecodeLedDatagram(buf []byte) (*LedDatagram, error) {
	if len(buf) < LedDatagramSize {
		return nil, ErrShortPacket
	}
	if len(buf) > LedDatagramSize {
		return nil, ErrLongPacket
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != LedMagic {
		return nil, ErrBadMagic
	}
	if CRC8(buf[:LedDatagramSize-1]) != buf[LedDatagramSize-1] {
		return nil, ErrBadCRC
	}

	d := &LedDatagram{Counter: buf[2]}
	copy(d.Pixels[:], buf[4:4+PixelBytes])
	return d, nil
}

// ButtonFrame reports four sampled button states. Best effort, no
// sequence number: consumers use the most recent validated frame.
// Wire layout: magic(2 LE) | a | b | c | d | crc8 = 7 bytes.
type ButtonFrame struct {
	A, B, C, D bool
}

func (b *ButtonFrame) Encode() []byte {
	buf := make([]byte, ButtonFrameSize)
	binary.LittleEndian.PutUint16(buf[0:2], ButtonMagic)
	buf[2] = boolByte(b.A)
	buf[3] = boolByte(b.B)
	buf[4] = boolByte(b.C)
	buf[5] = boolByte(b.D)
	buf[ButtonFrameSize-1] = CRC8(buf[:ButtonFrameSize-1])
	return buf
}

func DecodeButtonFrame(buf []byte) (*ButtonFrame, error) {
	if len(buf) < ButtonFrameSize {
		return nil, ErrShortPacket
	}
	if len(buf) > ButtonFrameSize {
		return nil, ErrLongPacket
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != ButtonMagic {
		return nil, ErrBadMagic
	}
	if CRC8(buf[:ButtonFrameSize-1]) != buf[ButtonFrameSize-1] {
		return nil, ErrBadCRC
	}

	return &ButtonFrame{
		A: buf[2] != 0,
		B: buf[3] != 0,
		C: buf[4] != 0,
		D: buf[5] != 0,
	}, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// ParamUpdate carries one animation parameter set. The meaning of
// P1-P3 depends on Anim. Counter cycles 1-255 for skip detection.
// Wire layout: magic(2 LE) | anim | counter | p1 p2 p3 (float32 LE) | crc8.
type ParamUpdate struct {
	Anim       AnimationType
	Counter    uint8
	P1, P2, P3 float32
}

func (p *ParamUpdate) Encode() []byte {
	buf := make([]byte, ParamUpdateSize)
	binary.LittleEndian.PutUint16(buf[0:2], LedMagic)
	buf[2] = byte(p.Anim)
	buf[3] = p.Counter
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.P1))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.P2))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.P3))
	buf[ParamUpdateSize-1] = CRC8(buf[:ParamUpdateSize-1])
	return buf
}

func DecodeParamUpdate(buf []byte) (*ParamUpdate, error) {
	if len(buf) < ParamUpdateSize {
		return nil, ErrShortPacket
	}
	if len(buf) > ParamUpdateSize {
		return nil, ErrLongPacket
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != LedMagic {
		return nil, ErrBadMagic
	}
	if CRC8(buf[:ParamUpdateSize-1]) != buf[ParamUpdateSize-1] {
		return nil, ErrBadCRC
	}

	return &ParamUpdate{
		Anim:    AnimationType(buf[2]),
		Counter: buf[3],
		P1:      math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		P2:      math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		P3:      math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
	}, nil
}

// Bootstrap moves network credentials and endpoint addresses from the
// serial-attached node to the datagram-attached node, once at startup.
// Wire layout: 0xCC 0xDD | ssid[32] | password[64] | peer_ip[4] |
// led_port(2 LE) | button_port(2 LE) | crc8 = 107 bytes.
type Bootstrap struct {
	SSID       string
	Password   string
	PeerIP     [4]byte
	LedPort    uint16
	ButtonPort uint16
}

func (b *Bootstrap) Encode() ([]byte, error) {
	if len(b.SSID) > SSIDLen {
		return nil, ErrFieldTooLong
	}
	if len(b.Password) > PasswordLen {
		return nil, ErrFieldTooLong
	}

	buf := make([]byte, BootstrapSize)
	buf[0] = BootstrapSync1
	buf[1] = BootstrapSync2
	copy(buf[2:2+SSIDLen], b.SSID) // NUL padded
	copy(buf[2+SSIDLen:2+SSIDLen+PasswordLen], b.Password)
	off := 2 + SSIDLen + PasswordLen
	copy(buf[off:off+4], b.PeerIP[:])
	binary.LittleEndian.PutUint16(buf[off+4:off+6], b.LedPort)
	binary.LittleEndian.PutUint16(buf[off+6:off+8], b.ButtonPort)
	buf[BootstrapSize-1] = CRC8(buf[:BootstrapSize-1])
	return buf, nil
}

func DecodeBootstrap(buf []byte) (*Bootstrap, error) {
	if len(buf) < BootstrapSize {
		return nil, ErrShortPacket
	}
	if len(buf) > BootstrapSize {
		return nil, ErrLongPacket
	}
	if buf[0] != BootstrapSync1 || buf[1] != BootstrapSync2 {
		return nil, ErrBadSync
	}
	if CRC8(buf[:BootstrapSize-1]) != buf[BootstrapSize-1] {
		return nil, ErrBadCRC
	}

	b := &Bootstrap{
		SSID:     cString(buf[2 : 2+SSIDLen]),
		Password: cString(buf[2+SSIDLen : 2+SSIDLen+PasswordLen]),
	}
	off := 2 + SSIDLen + PasswordLen
	copy(b.PeerIP[:], buf[off:off+4])
	b.LedPort = binary.LittleEndian.Uint16(buf[off+4 : off+6])
	b.ButtonPort = binary.LittleEndian.Uint16(buf[off+6 : off+8])
	return b, nil
}

// cString returns the bytes before the first NUL as a string.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
