package anim

import (
	"bytes"
	"testing"

	"ledlink/protocol"
)

func TestHSVToRGBWPrimaries(t *testing.T) {
	testCases := []struct {
		name       string
		h, s, v    float32
		r, g, b, w uint8
	}{
		{"red", 0, 1, 1, 255, 0, 0, 0},
		{"green", 120, 1, 1, 0, 255, 0, 0},
		{"blue", 240, 1, 1, 0, 0, 255, 0},
		{"black", 0, 1, 0, 0, 0, 0, 0},
		{"white channel only", 0, 0, 1, 255, 255, 255, 255},
		{"negative hue wraps", -240, 1, 1, 0, 255, 0, 0},
		{"hue over 360 wraps", 480, 1, 1, 0, 255, 0, 0},
	}

	for _, tc := range testCases {
		r, g, b, w := HSVToRGBW(tc.h, tc.s, tc.v)
		if r != tc.r || g != tc.g || b != tc.b || w != tc.w {
			t.Errorf("%s: got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
				tc.name, r, g, b, w, tc.r, tc.g, tc.b, tc.w)
		}
	}
}

func TestRenderDeterminism(t *testing.T) {
	types := []protocol.AnimationType{
		protocol.AnimOff, protocol.AnimSolid, protocol.AnimRainbow,
		protocol.AnimGradient, protocol.AnimWave, protocol.AnimBreathing,
	}

	for _, at := range types {
		a := make([]byte, protocol.PixelBytes)
		b := make([]byte, protocol.PixelBytes)

		Render(a, at, 123.4, 0.7, 0.9, 417, 6950)
		Render(b, at, 123.4, 0.7, 0.9, 417, 6950)

		if !bytes.Equal(a, b) {
			t.Errorf("type %d: identical inputs produced different output", at)
		}
	}
}

func TestRenderSolidRed(t *testing.T) {
	dst := make([]byte, protocol.PixelBytes)
	Render(dst, protocol.AnimSolid, 0, 1.0, 1.0, 0, 0)

	for i := 0; i < protocol.TotalLEDs; i++ {
		base := i * protocol.BytesPerLED
		if dst[base] != 255 || dst[base+1] != 0 || dst[base+2] != 0 || dst[base+3] != 0 {
			t.Fatalf("LED %d = (%d,%d,%d,%d), want (255,0,0,0)",
				i, dst[base], dst[base+1], dst[base+2], dst[base+3])
		}
	}
}

func TestRenderOffAllZero(t *testing.T) {
	dst := make([]byte, protocol.PixelBytes)
	for i := range dst {
		dst[i] = 0xFF
	}
	Render(dst, protocol.AnimOff, 1, 2, 3, 99, 99)

	for i, b := range dst {
		if b != 0 {
			t.Fatalf("byte %d = %d after AnimOff, want 0", i, b)
		}
	}
}

func TestRenderRainbowAdvancesWithFrame(t *testing.T) {
	a := make([]byte, protocol.PixelBytes)
	b := make([]byte, protocol.PixelBytes)

	Render(a, protocol.AnimRainbow, 0, 2.0, 1.0, 10, 0)
	Render(b, protocol.AnimRainbow, 0, 2.0, 1.0, 11, 0)

	if bytes.Equal(a, b) {
		t.Error("rainbow output did not change between frames")
	}

	// frame 11 at 2 deg/frame equals frame 10 shifted by one frame of
	// hue offset applied globally; spot-check equivalence via offset.
	c := make([]byte, protocol.PixelBytes)
	Render(c, protocol.AnimRainbow, 2.0, 2.0, 1.0, 10, 0)
	if !bytes.Equal(b, c) {
		t.Error("hue offset and frame advance are not interchangeable")
	}
}

func TestRenderGradientEndpoints(t *testing.T) {
	dst := make([]byte, protocol.PixelBytes)
	Render(dst, protocol.AnimGradient, 0, 240, 1.0, 0, 0)

	// First LED at start hue (red), last at end hue (blue).
	if dst[0] != 255 || dst[2] != 0 {
		t.Errorf("first LED = (%d,%d,%d), want red", dst[0], dst[1], dst[2])
	}
	last := (protocol.TotalLEDs - 1) * protocol.BytesPerLED
	if dst[last] != 0 || dst[last+2] != 255 {
		t.Errorf("last LED = (%d,%d,%d), want blue", dst[last], dst[last+1], dst[last+2])
	}
}

func TestRenderWaveFalloff(t *testing.T) {
	dst := make([]byte, protocol.PixelBytes)
	// Center at LED 0, narrow half-width: far LEDs must be dark.
	Render(dst, protocol.AnimWave, 0, 0, 0.1, 0, 0)

	farBase := (protocol.TotalLEDs / 2) * protocol.BytesPerLED
	if dst[farBase] != 0 || dst[farBase+1] != 0 || dst[farBase+2] != 0 {
		t.Error("LED opposite the wave center should be dark")
	}

	// LED 0 sits at the center: full brightness red.
	if dst[0] != 255 {
		t.Errorf("center LED red = %d, want 255", dst[0])
	}
}

func TestRenderBreathingPeak(t *testing.T) {
	dst := make([]byte, protocol.BytesPerLED)

	// 1 cycle/s at t=250ms is the sine peak: full brightness.
	Render(dst, protocol.AnimBreathing, 0, 1.0, 0.2, 0, 250)
	if dst[0] != 255 {
		t.Errorf("peak brightness red = %d, want 255", dst[0])
	}

	// At t=750ms the sine trough holds the minimum brightness.
	Render(dst, protocol.AnimBreathing, 0, 1.0, 0.2, 0, 750)
	if dst[0] == 0 || dst[0] > 64 {
		t.Errorf("trough red = %d, want roughly 0.2*255", dst[0])
	}
}

func TestAnimatorApplyAndTick(t *testing.T) {
	a := NewAnimator()
	dst := make([]byte, protocol.PixelBytes)

	// Starts dark.
	a.Tick(dst, 0)
	for _, b := range dst {
		if b != 0 {
			t.Fatal("fresh animator should render dark")
		}
	}

	a.Apply(&protocol.ParamUpdate{Anim: protocol.AnimSolid, P1: 0, P2: 1, P3: 1})
	a.Tick(dst, 17)
	if dst[0] != 255 {
		t.Errorf("after solid red update, red = %d, want 255", dst[0])
	}

	anim, p1, _, _ := a.Params()
	if anim != protocol.AnimSolid || p1 != 0 {
		t.Error("Params does not reflect applied update")
	}
}

func TestAnimatorFrameAdvances(t *testing.T) {
	a := NewAnimator()
	a.Apply(&protocol.ParamUpdate{Anim: protocol.AnimRainbow, P1: 0, P2: 5, P3: 1})

	first := make([]byte, protocol.PixelBytes)
	second := make([]byte, protocol.PixelBytes)
	a.Tick(first, 0)
	a.Tick(second, 17)

	if bytes.Equal(first, second) {
		t.Error("animator frame index did not advance between ticks")
	}
}
