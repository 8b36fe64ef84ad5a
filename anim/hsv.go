// Package anim deterministically regenerates pixel frames from compact
// animation parameters. The same (type, parameters, frame index, time)
// inputs always produce byte-identical output, which is what lets the
// consumer run parametric mode without ever receiving a pixel buffer.
package anim

import "math"

// HSVToRGBW converts a hue (degrees, any range), saturation and value
// (both clamped to [0,1]) to an RGBW sample. The white channel carries
// the desaturated portion: (1-s)*v scaled to 255.
func HSVToRGBW(h, s, v float32) (r, g, b, w uint8) {
	hf := float64(h)
	hf = math.Mod(hf, 360)
	if hf < 0 {
		hf += 360
	}

	sf := clamp01(float64(s))
	vf := clamp01(float64(v))

	c := vf * sf
	x := c * (1 - math.Abs(math.Mod(hf/60, 2)-1))
	m := vf - c

	var rf, gf, bf float64
	switch {
	case hf < 60:
		rf, gf, bf = c, x, 0
	case hf < 120:
		rf, gf, bf = x, c, 0
	case hf < 180:
		rf, gf, bf = 0, c, x
	case hf < 240:
		rf, gf, bf = 0, x, c
	case hf < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	r = uint8((rf + m) * 255)
	g = uint8((gf + m) * 255)
	b = uint8((bf + m) * 255)
	w = uint8((1 - sf) * vf * 255)
	return r, g, b, w
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
