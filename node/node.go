// Package node implements the two endpoints of the LED link: the
// producer (GPU side) that generates frames or parameter updates, and
// the consumer (CPU side) that validates them and drives the strip.
//
// Both endpoints are tick driven. The owning loop calls Tick with the
// current monotonic time as fast as it likes; cadence comparisons
// decide what actually runs. Nothing in this package sleeps or blocks.
package node

import "time"

// DrainLimit caps how many inbound messages one Tick consumes. A burst
// larger than this is spread over subsequent ticks so the frame cadence
// never starves.
const DrainLimit = 10

// Default cadences. Frame pacing matches the 60 fps wire rate.
const (
	DefaultFrameInterval  = 16667 * time.Microsecond
	DefaultButtonInterval = 100 * time.Millisecond
	DefaultStatsInterval  = time.Second
)

// Mode selects what the LED channel carries.
type Mode uint8

const (
	// ModeRaw streams full pixel frames at 60 fps.
	ModeRaw Mode = iota

	// ModeParametric sends compact parameter updates and lets the
	// consumer generate pixels locally.
	ModeParametric
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeParametric:
		return "parametric"
	default:
		return "unknown"
	}
}

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "raw":
		return ModeRaw, true
	case "parametric":
		return ModeParametric, true
	default:
		return ModeRaw, false
	}
}

// Cadence fires at a fixed interval on a caller-supplied clock. The
// zero value fires on the first Due call.
type Cadence struct {
	interval time.Duration
	last     time.Time
}

func NewCadence(interval time.Duration) Cadence {
	return Cadence{interval: interval}
}

// Due reports whether the interval has elapsed and, if so, restarts it.
func (c *Cadence) Due(now time.Time) bool {
	if now.Sub(c.last) < c.interval {
		return false
	}
	c.last = now
	return true
}
