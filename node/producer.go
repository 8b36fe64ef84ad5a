package node

import (
	"time"

	"go.uber.org/zap"

	"ledlink/anim"
	"ledlink/driver"
	"ledlink/protocol"
)

// Renderer fills dst with one RGBW frame for raw mode. frame and
// timeMS advance on the producer's local clock.
type Renderer func(dst []byte, frame uint32, timeMS uint32)

// ParamFunc returns the animation parameter set the producer should
// currently be broadcasting in parametric mode.
type ParamFunc func() (protocol.AnimationType, float32, float32, float32)

// DemoRenderer rotates a full-brightness rainbow across the strip, two
// degrees of hue per frame. The default pixel source for the producer
// binary when nothing else is wired in.
func DemoRenderer() Renderer {
	return func(dst []byte, frame uint32, timeMS uint32) {
		anim.Render(dst, protocol.AnimRainbow, 0, 2, 1, frame, timeMS)
	}
}

// ProducerOptions configures a Producer. Sink is required; the other
// collaborators depend on the mode.
type ProducerOptions struct {
	Mode    Mode
	Sink    LedSink
	Buttons ButtonSource // optional
	Render  Renderer     // raw mode pixel source
	Params  ParamFunc    // parametric mode parameter source

	// OnPress fires once per rising edge of a received button, with the
	// button index 0-3.
	OnPress func(button int)

	FrameInterval time.Duration
	StatsInterval time.Duration

	// KeepaliveInterval bounds how stale a consumer can go in
	// parametric mode: the current parameter set is re-broadcast at
	// this interval even when unchanged, so a consumer that lost the
	// one change update converges on the next keepalive.
	KeepaliveInterval time.Duration

	Log *zap.Logger
}

// DefaultKeepaliveInterval is the parametric re-broadcast period.
const DefaultKeepaliveInterval = time.Second

// Producer is the GPU-side endpoint. Each Tick it sends at most one
// frame or parameter update, drains inbound button frames, and
// periodically logs throughput.
type Producer struct {
	mode    Mode
	sink    LedSink
	buttons ButtonSource
	render  Renderer
	params  ParamFunc
	onPress func(int)
	log     *zap.Logger

	frameCadence Cadence
	statsCadence Cadence

	start   time.Time
	frame   uint32
	pixels  [protocol.PixelBytes]byte
	counter uint8 // LED frame counter, 1..60

	paramCounter  uint8 // parameter counter, 1..255
	lastAnim      protocol.AnimationType
	lastP1        float32
	lastP2        float32
	lastP3        float32
	paramsSent    bool
	lastParamSend time.Time
	keepalive     time.Duration

	edges       driver.EdgeDetector
	lastButtons protocol.ButtonFrame

	framesSent uint32
	updates    uint32
}

func NewProducer(opts ProducerOptions) *Producer {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = DefaultStatsInterval
	}
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = DefaultKeepaliveInterval
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Producer{
		mode:         opts.Mode,
		sink:         opts.Sink,
		buttons:      opts.Buttons,
		render:       opts.Render,
		params:       opts.Params,
		onPress:      opts.OnPress,
		log:          opts.Log,
		frameCadence: NewCadence(opts.FrameInterval),
		statsCadence: NewCadence(opts.StatsInterval),
		keepalive:    opts.KeepaliveInterval,
	}
}

// Tick runs one iteration of the producer loop. Send errors are
// returned after the rest of the tick completes; the link is lossy and
// a failed send is not fatal to the loop.
func (p *Producer) Tick(now time.Time) error {
	if p.start.IsZero() {
		p.start = now
	}

	var sendErr error
	if p.frameCadence.Due(now) {
		sendErr = p.produce(now)
	}

	p.drainButtons()

	if p.statsCadence.Due(now) {
		p.log.Info("producer stats",
			zap.Stringer("mode", p.mode),
			zap.Uint32("frames_sent", p.framesSent),
			zap.Uint32("param_updates", p.updates),
		)
	}
	return sendErr
}

func (p *Producer) produce(now time.Time) error {
	timeMS := uint32(now.Sub(p.start).Milliseconds())

	switch p.mode {
	case ModeRaw:
		if p.render == nil {
			return nil
		}
		p.frame++
		p.render(p.pixels[:], p.frame, timeMS)
		p.counter = protocol.NextCounter(p.counter, protocol.LedFrameModulus)
		if err := p.sink.SendPixels(&p.pixels, p.counter); err != nil {
			return err
		}
		p.framesSent++

	case ModeParametric:
		if p.params == nil {
			return nil
		}
		a, p1, p2, p3 := p.params()
		changed := !p.paramsSent || a != p.lastAnim || p1 != p.lastP1 || p2 != p.lastP2 || p3 != p.lastP3
		// Unchanged parameters still go out as a periodic keepalive:
		// the link is lossy and a consumer that missed the one change
		// update would otherwise render the wrong animation forever.
		if !changed && now.Sub(p.lastParamSend) < p.keepalive {
			return nil
		}
		p.paramCounter = protocol.NextCounter(p.paramCounter, protocol.ParamUpdateModulus)
		u := &protocol.ParamUpdate{Anim: a, Counter: p.paramCounter, P1: p1, P2: p2, P3: p3}
		if err := p.sink.SendParams(u); err != nil {
			return err
		}
		p.lastAnim, p.lastP1, p.lastP2, p.lastP3 = a, p1, p2, p3
		p.paramsSent = true
		p.lastParamSend = now
		p.updates++
	}
	return nil
}

func (p *Producer) drainButtons() {
	if p.buttons == nil {
		return
	}
	for i := 0; i < DrainLimit; i++ {
		b, ok := p.buttons.Poll()
		if !ok {
			return
		}
		p.lastButtons = *b

		pressed := p.edges.Update([4]bool{b.A, b.B, b.C, b.D})
		if p.onPress == nil {
			continue
		}
		for btn, edge := range pressed {
			if edge {
				p.onPress(btn)
			}
		}
	}
}

// Buttons returns the most recent validated button frame.
func (p *Producer) Buttons() protocol.ButtonFrame { return p.lastButtons }

// FramesSent returns how many pixel frames have been transmitted.
func (p *Producer) FramesSent() uint32 { return p.framesSent }

// UpdatesSent returns how many parameter updates have been transmitted.
func (p *Producer) UpdatesSent() uint32 { return p.updates }
