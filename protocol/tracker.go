package protocol

// SequenceTracker detects dropped frames on one logical channel by
// comparing cyclic frame counters. Counters run 1..modulus; a gap is
// counted as skipped, never retried. The tracker is owned by the single
// polling loop for its channel and is not safe for concurrent use.
type SequenceTracker struct {
	modulus  uint8
	last     uint8
	accepted uint32
	skipped  uint32
}

// NewSequenceTracker creates a tracker for counters cycling 1..modulus.
func NewSequenceTracker(modulus uint8) *SequenceTracker {
	return &SequenceTracker{modulus: modulus}
}

// Accept records a newly validated frame counter and returns how many
// frames were skipped since the previous one. The first frame of a
// session is accepted unconditionally with no gap.
func (t *SequenceTracker) Accept(counter uint8) uint32 {
	var gap uint32

	if t.accepted > 0 {
		expected := NextCounter(t.last, t.modulus)
		if counter != expected {
			// Forward distance under wraparound.
			if counter >= expected {
				gap = uint32(counter - expected)
			} else {
				gap = uint32(t.modulus-expected) + uint32(counter)
			}
			t.skipped += gap
		}
	}

	t.last = counter
	t.accepted++
	return gap
}

// Reset clears the gap baseline; the next Accept starts a new session.
func (t *SequenceTracker) Reset() {
	t.last = 0
	t.accepted = 0
	t.skipped = 0
}

// Accepted returns the number of frames accepted so far.
func (t *SequenceTracker) Accepted() uint32 { return t.accepted }

// Skipped returns the cumulative count of frames lost to gaps.
func (t *SequenceTracker) Skipped() uint32 { return t.skipped }

// Last returns the most recently accepted counter value.
func (t *SequenceTracker) Last() uint8 { return t.last }
