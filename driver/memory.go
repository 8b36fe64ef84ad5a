package driver

import (
	"fmt"

	"ledlink/protocol"
)

// MemoryStrip keeps the last shown buffer in RAM. Used by host builds
// and tests where no physical strip is attached.
type MemoryStrip struct {
	pixels []byte
	shows  int
}

func NewMemoryStrip(count int) *MemoryStrip {
	return &MemoryStrip{pixels: make([]byte, count*protocol.BytesPerLED)}
}

func (s *MemoryStrip) Show(pixels []byte) error {
	if len(pixels) != len(s.pixels) {
		return fmt.Errorf("strip: got %d pixel bytes, want %d", len(pixels), len(s.pixels))
	}
	copy(s.pixels, pixels)
	s.shows++
	return nil
}

func (s *MemoryStrip) Len() int {
	return len(s.pixels) / protocol.BytesPerLED
}

// Pixels returns the last shown buffer.
func (s *MemoryStrip) Pixels() []byte { return s.pixels }

// Shows returns how many times Show has been called.
func (s *MemoryStrip) Shows() int { return s.shows }

// StaticButtons reports a fixed state, settable from tests.
type StaticButtons struct {
	State [4]bool
}

func (b *StaticButtons) Read() [4]bool { return b.State }
