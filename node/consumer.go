package node

import (
	"time"

	"go.uber.org/zap"

	"ledlink/anim"
	"ledlink/driver"
	"ledlink/protocol"
)

// ConsumerOptions configures a Consumer. Source and Strip are
// required; ButtonSink and Buttons are optional and only wired when
// the node has physical buttons to report.
type ConsumerOptions struct {
	Mode       Mode
	Source     LedSource
	Strip      driver.Strip
	Buttons    driver.Buttons // optional
	ButtonSink ButtonSink     // optional

	FrameInterval  time.Duration
	ButtonInterval time.Duration
	StatsInterval  time.Duration

	Log *zap.Logger
}

// Consumer is the CPU-side endpoint. Each Tick it drains validated
// inbound messages, refreshes the strip, samples and reports buttons,
// and periodically logs link health.
type Consumer struct {
	mode    Mode
	source  LedSource
	strip   driver.Strip
	buttons driver.Buttons
	btnSink ButtonSink
	log     *zap.Logger

	animator *anim.Animator

	frameCadence  Cadence
	buttonCadence Cadence
	statsCadence  Cadence

	start  time.Time
	pixels [protocol.PixelBytes]byte
}

func NewConsumer(opts ConsumerOptions) *Consumer {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.ButtonInterval <= 0 {
		opts.ButtonInterval = DefaultButtonInterval
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = DefaultStatsInterval
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Consumer{
		mode:          opts.Mode,
		source:        opts.Source,
		strip:         opts.Strip,
		buttons:       opts.Buttons,
		btnSink:       opts.ButtonSink,
		log:           opts.Log,
		animator:      anim.NewAnimator(),
		frameCadence:  NewCadence(opts.FrameInterval),
		buttonCadence: NewCadence(opts.ButtonInterval),
		statsCadence:  NewCadence(opts.StatsInterval),
	}
}

// Tick runs one iteration of the consumer loop.
func (c *Consumer) Tick(now time.Time) error {
	if c.start.IsZero() {
		c.start = now
	}

	showErr := c.drain()

	if c.frameCadence.Due(now) && c.mode == ModeParametric {
		timeMS := uint32(now.Sub(c.start).Milliseconds())
		c.animator.Tick(c.pixels[:], timeMS)
		if err := c.strip.Show(c.pixels[:]); err != nil {
			showErr = err
		}
	}

	if c.buttonCadence.Due(now) {
		c.reportButtons()
	}

	if c.statsCadence.Due(now) {
		s := c.source.Stats()
		c.log.Info("link stats",
			zap.Stringer("mode", c.mode),
			zap.Uint32("accepted", s.Accepted),
			zap.Uint32("skipped", s.Skipped),
			zap.Uint32("corrupted", s.Corrupted),
			zap.Uint32("invalid", s.Invalid),
			zap.Uint32("sync_failures", s.SyncFailures),
		)
	}
	return showErr
}

// drain consumes up to DrainLimit validated messages. Raw pixel frames
// go straight to the strip: display latches the newest frame as soon
// as it validates, independent of the local refresh cadence.
func (c *Consumer) drain() error {
	var showErr error
	for i := 0; i < DrainLimit; i++ {
		ev := c.source.Poll()
		switch ev.Kind {
		case EventPixels:
			copy(c.pixels[:], ev.Pixels)
			if c.mode == ModeRaw {
				if err := c.strip.Show(c.pixels[:]); err != nil {
					showErr = err
				}
			}
		case EventParams:
			c.animator.Apply(ev.Params)
		default:
			return showErr
		}
	}
	return showErr
}

func (c *Consumer) reportButtons() {
	if c.buttons == nil || c.btnSink == nil {
		return
	}
	state := c.buttons.Read()
	f := &protocol.ButtonFrame{A: state[0], B: state[1], C: state[2], D: state[3]}
	if err := c.btnSink.Send(f); err != nil {
		// Best effort channel. The next sample goes out on the next
		// cadence hit regardless.
		c.log.Debug("button send failed", zap.Error(err))
	}
}

// Stats returns the source's loss accounting snapshot.
func (c *Consumer) Stats() Stats { return c.source.Stats() }

// Animator exposes the parametric animation state, for tests and
// status reporting.
func (c *Consumer) Animator() *anim.Animator { return c.animator }
