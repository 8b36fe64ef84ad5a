// Package driver is the boundary to the physical hardware: LED strips
// that accept a flat RGBW buffer and GPIO buttons. Nothing in here
// knows about the wire protocol; a validated pixel buffer comes in,
// light comes out.
package driver

import "ledlink/protocol"

// Strip displays a flat RGBW buffer, 4 bytes per LED, indexed by LED.
type Strip interface {
	// Show latches the buffer to the physical LEDs. The buffer is only
	// valid for the duration of the call.
	Show(pixels []byte) error

	// Len returns the number of LEDs.
	Len() int
}

// Buttons samples the digital button inputs.
type Buttons interface {
	// Read returns the current state of the four buttons. true = pressed.
	Read() [4]bool
}

// Sections splits the 196-byte pixel payload into the four physical
// strip segments. Offsets are fixed by the strip geometry.
func Sections(pixels []byte) (leftFin, rightFin, tongue, scale []byte) {
	const (
		l = protocol.LeftFinLEDs * protocol.BytesPerLED
		r = protocol.RightFinLEDs * protocol.BytesPerLED
		t = protocol.TongueLEDs * protocol.BytesPerLED
	)
	leftFin = pixels[:l]
	rightFin = pixels[l : l+r]
	tongue = pixels[l+r : l+r+t]
	scale = pixels[l+r+t:]
	return
}

// EdgeDetector reports rising edges on button states: pressed this
// sample, released the one before.
type EdgeDetector struct {
	last [4]bool
}

// Update feeds a new sample and returns which buttons were newly
// pressed since the previous sample.
func (e *EdgeDetector) Update(state [4]bool) [4]bool {
	var pressed [4]bool
	for i := range state {
		pressed[i] = state[i] && !e.last[i]
	}
	e.last = state
	return pressed
}
