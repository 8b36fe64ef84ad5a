package anim

import (
	"math"

	"ledlink/protocol"
)

// Render fills dst with one RGBW frame for the given animation type and
// parameters. dst length must be a multiple of 4; one LED per 4 bytes.
// frame is the local frame index and timeMS the local monotonic time;
// both advance on the caller's clock, never over the wire.
//
// Render is pure: no state, no side effects, identical inputs produce
// identical output.
func Render(dst []byte, anim protocol.AnimationType, p1, p2, p3 float32, frame uint32, timeMS uint32) {
	ledCount := len(dst) / protocol.BytesPerLED

	switch anim {
	case protocol.AnimSolid:
		renderSolid(dst, ledCount, p1, p2, p3)
	case protocol.AnimRainbow:
		renderRainbow(dst, ledCount, p1, p2, p3, frame)
	case protocol.AnimGradient:
		renderGradient(dst, ledCount, p1, p2, p3)
	case protocol.AnimWave:
		renderWave(dst, ledCount, p1, p2, p3, frame)
	case protocol.AnimBreathing:
		renderBreathing(dst, ledCount, p1, p2, p3, timeMS)
	default:
		// AnimOff and reserved types render dark.
		renderOff(dst)
	}
}

func setLED(dst []byte, i int, r, g, b, w uint8) {
	base := i * protocol.BytesPerLED
	dst[base+0] = r
	dst[base+1] = g
	dst[base+2] = b
	dst[base+3] = w
}

func renderOff(dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
}

// p1 hue, p2 saturation, p3 value
func renderSolid(dst []byte, ledCount int, p1, p2, p3 float32) {
	r, g, b, w := HSVToRGBW(p1, p2, p3)
	for i := 0; i < ledCount; i++ {
		setLED(dst, i, r, g, b, w)
	}
}

// p1 hue offset, p2 hue increment per frame, p3 brightness
func renderRainbow(dst []byte, ledCount int, p1, p2, p3 float32, frame uint32) {
	offset := float64(p1) + float64(frame)*float64(p2)
	for i := 0; i < ledCount; i++ {
		hue := offset + float64(i)*360/float64(ledCount)
		r, g, b, w := HSVToRGBW(float32(hue), 1, p3)
		setLED(dst, i, r, g, b, w)
	}
}

// p1 start hue, p2 end hue, p3 brightness
func renderGradient(dst []byte, ledCount int, p1, p2, p3 float32) {
	for i := 0; i < ledCount; i++ {
		t := 0.0
		if ledCount > 1 {
			t = float64(i) / float64(ledCount-1)
		}
		hue := lerp(float64(p1), float64(p2), t)
		r, g, b, w := HSVToRGBW(float32(hue), 1, p3)
		setLED(dst, i, r, g, b, w)
	}
}

// p1 wave center (0..1), p2 advance per frame, p3 half-width
func renderWave(dst []byte, ledCount int, p1, p2, p3 float32, frame uint32) {
	center := math.Mod(float64(p1)+float64(frame)*float64(p2), 1)
	if center < 0 {
		center += 1
	}

	for i := 0; i < ledCount; i++ {
		pos := float64(i) / float64(ledCount)

		// Shortest wrapped distance from the wave center.
		dist := math.Abs(pos - center)
		if dist > 0.5 {
			dist = 1 - dist
		}

		brightness := 1 - dist/float64(p3)
		if brightness < 0 || math.IsNaN(brightness) {
			brightness = 0
		}

		// Hue is fixed per position: a rainbow the wave sweeps across.
		hue := pos * 360
		r, g, b, w := HSVToRGBW(float32(hue), 1, float32(brightness))
		setLED(dst, i, r, g, b, w)
	}
}

// p1 hue, p2 cycles per second, p3 minimum brightness
func renderBreathing(dst []byte, ledCount int, p1, p2, p3 float32, timeMS uint32) {
	phase := float64(timeMS) / 1000 * float64(p2) * 2 * math.Pi
	level := (math.Sin(phase) + 1) / 2
	v := lerp(clamp01(float64(p3)), 1, level)

	r, g, b, w := HSVToRGBW(p1, 1, float32(v))
	for i := 0; i < ledCount; i++ {
		setLED(dst, i, r, g, b, w)
	}
}

// Animator is the consumer-side state for parametric mode: the last
// applied parameter set plus the local frame index. Applying a
// corrupted update is the caller's responsibility to avoid; Animator
// itself never rejects.
type Animator struct {
	anim       protocol.AnimationType
	p1, p2, p3 float32
	frame      uint32
}

// NewAnimator starts dark (AnimOff).
func NewAnimator() *Animator {
	return &Animator{anim: protocol.AnimOff}
}

// Apply installs a validated parameter update. The local frame index
// keeps running so position-advancing animations stay smooth across
// updates.
func (a *Animator) Apply(p *protocol.ParamUpdate) {
	a.anim = p.Anim
	a.p1 = p.P1
	a.p2 = p.P2
	a.p3 = p.P3
}

// Tick advances the local frame index and renders into dst using the
// caller's monotonic time in milliseconds.
func (a *Animator) Tick(dst []byte, timeMS uint32) {
	a.frame++
	Render(dst, a.anim, a.p1, a.p2, a.p3, a.frame, timeMS)
}

// Params returns the currently applied parameter set.
func (a *Animator) Params() (protocol.AnimationType, float32, float32, float32) {
	return a.anim, a.p1, a.p2, a.p3
}
