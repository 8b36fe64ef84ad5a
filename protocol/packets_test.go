package protocol

import (
	"errors"
	"testing"
)

func TestPacketSizes(t *testing.T) {
	if LedFrameSize != 200 {
		t.Errorf("LedFrameSize = %d, want 200", LedFrameSize)
	}
	if LedDatagramSize != 201 {
		t.Errorf("LedDatagramSize = %d, want 201", LedDatagramSize)
	}
	if ButtonFrameSize != 7 {
		t.Errorf("ButtonFrameSize = %d, want 7", ButtonFrameSize)
	}
	if ParamUpdateSize != 17 {
		t.Errorf("ParamUpdateSize = %d, want 17", ParamUpdateSize)
	}
	if BootstrapSize != 107 {
		t.Errorf("BootstrapSize = %d, want 107", BootstrapSize)
	}
	if PixelBytes != 196 {
		t.Errorf("PixelBytes = %d, want 196", PixelBytes)
	}
}

func TestLedFrameRoundTrip(t *testing.T) {
	f := &LedFrame{Counter: 42}
	for i := range f.Pixels {
		f.Pixels[i] = byte(255 - i)
	}

	decoded, err := DecodeLedFrame(f.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Counter != f.Counter || decoded.Pixels != f.Pixels {
		t.Error("round trip mismatch")
	}
}

func TestLedFrameSections(t *testing.T) {
	f := &LedFrame{}
	for i := range f.Pixels {
		f.Pixels[i] = byte(i)
	}

	left, right, tongue, scale := f.LeftFin(), f.RightFin(), f.Tongue(), f.Scale()
	if len(left) != 52 || len(right) != 52 || len(tongue) != 36 || len(scale) != 56 {
		t.Fatalf("section lengths = %d/%d/%d/%d, want 52/52/36/56",
			len(left), len(right), len(tongue), len(scale))
	}
	if left[0] != 0 || right[0] != 52 || tongue[0] != 104 || scale[0] != 140 {
		t.Error("section offsets wrong")
	}
	if len(left)+len(right)+len(tongue)+len(scale) != PixelBytes {
		t.Error("sections do not cover the pixel payload")
	}
}

func TestLedDatagramRoundTrip(t *testing.T) {
	d := &LedDatagram{Counter: 60}
	d.Pixels[0] = 0xDE
	d.Pixels[195] = 0xAD

	buf := d.Encode()
	if buf[0] != 0x55 || buf[1] != 0xAA {
		t.Errorf("magic bytes = %02X %02X, want 55 AA (0xAA55 little-endian)", buf[0], buf[1])
	}

	decoded, err := DecodeLedDatagram(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Counter != 60 || decoded.Pixels != d.Pixels {
		t.Error("round trip mismatch")
	}
}

func TestButtonFrameRoundTrip(t *testing.T) {
	b := &ButtonFrame{A: true, C: true}

	decoded, err := DecodeButtonFrame(b.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !decoded.A || decoded.B || !decoded.C || decoded.D {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestParamUpdateRoundTrip(t *testing.T) {
	p := &ParamUpdate{
		Anim:    AnimRainbow,
		Counter: 200,
		P1:      123.5,
		P2:      -0.25,
		P3:      1.0,
	}

	decoded, err := DecodeParamUpdate(p.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *decoded != *p {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, p)
	}
}

func TestBootstrapRoundTrip(t *testing.T) {
	b := &Bootstrap{
		SSID:       "workshop-net",
		Password:   "hunter2hunter2",
		PeerIP:     [4]byte{192, 168, 4, 20},
		LedPort:    8888,
		ButtonPort: 8889,
	}

	buf, err := b.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if len(buf) != BootstrapSize {
		t.Fatalf("encoded length = %d, want %d", len(buf), BootstrapSize)
	}

	decoded, err := DecodeBootstrap(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *decoded != *b {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, b)
	}
}

func TestBootstrapFieldTooLong(t *testing.T) {
	b := &Bootstrap{SSID: string(make([]byte, SSIDLen+1))}
	if _, err := b.Encode(); !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("err = %v, want ErrFieldTooLong", err)
	}
}

func TestDecodeRejectsBitFlips(t *testing.T) {
	// Flipping any single bit of an encoded packet must fail validation.
	packets := map[string][]byte{
		"button": (&ButtonFrame{A: true, D: true}).Encode(),
		"param":  (&ParamUpdate{Anim: AnimSolid, Counter: 9, P1: 120}).Encode(),
	}

	for name, buf := range packets {
		for byteIdx := range buf {
			for bit := 0; bit < 8; bit++ {
				flipped := make([]byte, len(buf))
				copy(flipped, buf)
				flipped[byteIdx] ^= 1 << bit

				var err error
				if name == "button" {
					_, err = DecodeButtonFrame(flipped)
				} else {
					_, err = DecodeParamUpdate(flipped)
				}
				if err == nil {
					t.Errorf("%s: flip at byte %d bit %d accepted", name, byteIdx, bit)
				}
			}
		}
	}
}

func TestDecodeWrongLength(t *testing.T) {
	short := make([]byte, ButtonFrameSize-1)
	if _, err := DecodeButtonFrame(short); !errors.Is(err, ErrShortPacket) {
		t.Errorf("short: err = %v, want ErrShortPacket", err)
	}

	long := make([]byte, ParamUpdateSize+1)
	if _, err := DecodeParamUpdate(long); !errors.Is(err, ErrLongPacket) {
		t.Errorf("long: err = %v, want ErrLongPacket", err)
	}
}
