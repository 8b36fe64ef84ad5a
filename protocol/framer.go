package protocol

// Outcome reports the result of one Poll call. All failure outcomes are
// non-fatal: the deframer counts them and resynchronizes on its own.
type Outcome uint8

const (
	// NoData means nothing was completed this call. Either the input
	// held no work or a frame is still incomplete and will be retried.
	NoData Outcome = iota

	// FrameAccepted means a frame passed sync, length and CRC checks
	// and was run through the sequence tracker.
	FrameAccepted

	// FrameRejected means a fully read frame failed CRC validation and
	// was discarded.
	FrameRejected

	// SyncNotFound means the search budget was exhausted without
	// finding a sync pair.
	SyncNotFound
)

func (o Outcome) String() string {
	switch o {
	case NoData:
		return "no-data"
	case FrameAccepted:
		return "accepted"
	case FrameRejected:
		return "rejected"
	case SyncNotFound:
		return "sync-not-found"
	default:
		return "unknown"
	}
}

type deframerState uint8

const (
	stateSearching deframerState = iota
	stateReading
)

// LinkStats is a snapshot of one receive channel's loss accounting.
type LinkStats struct {
	Accepted      uint32
	Skipped       uint32
	Corrupted     uint32
	SyncFailures  uint32
	BytesConsumed uint64
}

// Deframer recovers 200-byte LED frames from the raw serial byte
// stream. It owns the partial-frame state between calls and the
// sequence tracker for the channel, so it must only be used from the
// single loop that polls it.
type Deframer struct {
	state deframerState
	frame [LedFrameSize]byte
	have  int

	tracker *SequenceTracker

	syncFailures    uint32
	framesCorrupted uint32
	bytesConsumed   uint64
}

// NewDeframer creates a deframer with a fresh LED-channel tracker.
func NewDeframer() *Deframer {
	return &Deframer{tracker: NewSequenceTracker(LedFrameModulus)}
}

// Poll performs at most one searching -> reading -> validating cycle
// against the input and never blocks. Callers drain bursts by calling
// repeatedly, bounded by a small per-tick cap.
func (d *Deframer) Poll(input InputBuffer) (Outcome, *LedFrame) {
	if d.state == stateSearching {
		outcome := d.search(input)
		if outcome != FrameAccepted {
			return outcome, nil
		}
		// Sync pair is at the front of input; fall through to read it
		// as part of the frame.
		d.state = stateReading
		d.have = 0
	}

	// Reading: take whatever is available up to a full frame.
	n := copy(d.frame[d.have:], input.Data())
	input.Pop(n)
	d.bytesConsumed += uint64(n)
	d.have += n

	if d.have < LedFrameSize {
		return NoData, nil
	}

	// Validating: one full frame buffered, back to searching either way.
	d.state = stateSearching
	d.have = 0

	f, err := DecodeLedFrame(d.frame[:])
	if err != nil {
		d.framesCorrupted++
		return FrameRejected, nil
	}

	d.tracker.Accept(f.Counter)
	return FrameAccepted, f
}

// search discards garbage until a sync pair sits at the front of the
// input. Returns FrameAccepted when a pair was found, NoData when the
// stream ran dry first, SyncNotFound when the per-call budget ran out.
func (d *Deframer) search(input InputBuffer) Outcome {
	data := input.Data()
	discarded := 0

	for i := 0; i < len(data); {
		if discarded >= SyncSearchBudget {
			d.drop(input, i)
			d.syncFailures++
			return SyncNotFound
		}

		if data[i] != SyncByte1 {
			i++
			discarded++
			continue
		}

		if i+1 >= len(data) {
			// Lone sync candidate at the end of the stream. Keep it as
			// the front byte for the next call.
			d.drop(input, i)
			return NoData
		}

		if data[i+1] == SyncByte2 {
			d.drop(input, i)
			return FrameAccepted
		}

		// sync0 without sync1: discard the sync0, the byte after it
		// becomes a fresh candidate.
		i++
		discarded++
	}

	d.drop(input, len(data))
	return NoData
}

func (d *Deframer) drop(input InputBuffer, n int) {
	if n > 0 {
		input.Pop(n)
		d.bytesConsumed += uint64(n)
	}
}

// Stats returns a snapshot of the channel's loss accounting.
func (d *Deframer) Stats() LinkStats {
	return LinkStats{
		Accepted:      d.tracker.Accepted(),
		Skipped:       d.tracker.Skipped(),
		Corrupted:     d.framesCorrupted,
		SyncFailures:  d.syncFailures,
		BytesConsumed: d.bytesConsumed,
	}
}

// Tracker exposes the channel's sequence tracker.
func (d *Deframer) Tracker() *SequenceTracker { return d.tracker }

// Reset returns the deframer to SEARCHING and starts a new tracker
// session, so the first frame after a link reopen is never gap-compared
// against the old baseline. Tracker counters restart with the session;
// callers wanting cumulative numbers snapshot Stats first.
func (d *Deframer) Reset() {
	d.state = stateSearching
	d.have = 0
	d.tracker.Reset()
}
