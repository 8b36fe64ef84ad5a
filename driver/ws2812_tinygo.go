//go:build tinygo

package driver

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"ledlink/protocol"
)

// SK6812Strip drives an RGBW strip on a single GPIO pin. The SK6812
// wire order is GRBW, 32 bits per LED.
type SK6812Strip struct {
	dev   ws2812.Device
	count int
	raw   []uint32
}

func NewSK6812Strip(pin machine.Pin, count int) *SK6812Strip {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &SK6812Strip{
		dev:   ws2812.NewSK6812(pin),
		count: count,
		raw:   make([]uint32, count),
	}
}

func (s *SK6812Strip) Show(pixels []byte) error {
	n := len(pixels) / protocol.BytesPerLED
	if n > s.count {
		n = s.count
	}
	for i := 0; i < n; i++ {
		r := pixels[i*protocol.BytesPerLED]
		g := pixels[i*protocol.BytesPerLED+1]
		b := pixels[i*protocol.BytesPerLED+2]
		w := pixels[i*protocol.BytesPerLED+3]
		s.raw[i] = uint32(g)<<24 | uint32(r)<<16 | uint32(b)<<8 | uint32(w)
	}
	return s.dev.WriteRaw(s.raw[:n])
}

func (s *SK6812Strip) Len() int { return s.count }

// GPIOButtons samples four active-low inputs with internal pullups.
type GPIOButtons struct {
	pins [4]machine.Pin
}

func NewGPIOButtons(pins [4]machine.Pin) *GPIOButtons {
	for _, p := range pins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return &GPIOButtons{pins: pins}
}

func (b *GPIOButtons) Read() [4]bool {
	var state [4]bool
	for i, p := range b.pins {
		state[i] = !p.Get() // active low
	}
	return state
}
