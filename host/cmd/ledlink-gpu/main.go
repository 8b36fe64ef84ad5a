// ledlink-gpu is the producer side of the LED link. It renders frames
// (or broadcasts animation parameters) toward the consumer node and
// listens for button reports coming back.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ledlink/host/serial"
	"ledlink/link"
	"ledlink/node"
	"ledlink/protocol"
)

var configPath = flag.String("config", "", "Config file path (default ./ledlink.yaml)")

func main() {
	flag.Parse()

	cfg, err := node.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := node.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("producer failed", zap.Error(err))
	}
}

func run(cfg *node.Config, log *zap.Logger) error {
	mode, err := cfg.LinkMode()
	if err != nil {
		return err
	}
	useUDP, err := cfg.UseUDP()
	if err != nil {
		return err
	}

	var sink node.LedSink
	var buttons node.ButtonSource

	if useUDP {
		sink, buttons, err = udpTransport(cfg, log)
	} else {
		sink, buttons, err = serialTransport(cfg, log)
	}
	if err != nil {
		return err
	}

	// Cycle the demo animations so a bench setup shows life with no
	// other parameter source attached.
	params := demoParams()

	p := node.NewProducer(node.ProducerOptions{
		Mode:          mode,
		Sink:          sink,
		Buttons:       buttons,
		Render:        node.DemoRenderer(),
		Params:        params,
		OnPress:       func(b int) { log.Info("button pressed", zap.Int("button", b)) },
		FrameInterval: cfg.Cadence.Frame,
		StatsInterval: cfg.Cadence.Stats,
		Log:           log,
	})

	log.Info("producer running",
		zap.String("mode", cfg.Mode),
		zap.String("transport", cfg.Transport),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if err := p.Tick(now); err != nil {
				log.Warn("send failed", zap.Error(err))
			}
		case s := <-sig:
			log.Info("shutting down", zap.String("signal", s.String()))
			return nil
		}
	}
}

func serialTransport(cfg *node.Config, log *zap.Logger) (node.LedSink, node.ButtonSource, error) {
	port, err := serial.Open(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: 100,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("serial link open", zap.String("device", cfg.Serial.Device), zap.Int("baud", cfg.Serial.Baud))

	buttons := node.NewSerialButtonSource()
	go node.Pump(port, buttons)
	return node.NewSerialLedSink(port), buttons, nil
}

// udpTransport hands the network credentials to the serial-attached
// peer, then streams over UDP.
func udpTransport(cfg *node.Config, log *zap.Logger) (node.LedSink, node.ButtonSource, error) {
	boot, err := cfg.BootstrapPacket()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Serial.Device != "" {
		port, err := serial.Open(&serial.Config{
			Device: cfg.Serial.Device,
			Baud:   cfg.Serial.Baud,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := link.SendBootstrap(port, boot); err != nil {
			port.Close()
			return nil, nil, fmt.Errorf("bootstrap handover: %w", err)
		}
		port.Close()
		log.Info("bootstrap sent", zap.String("ssid", boot.SSID))
	}

	txSock, err := link.ListenUDP(0)
	if err != nil {
		return nil, nil, err
	}
	peer := link.PeerAddr(boot.PeerIP, boot.LedPort)
	sink := node.NewDatagramLedSink(txSock, peer)

	btnSock, err := link.ListenUDP(int(boot.ButtonPort))
	if err != nil {
		txSock.Close()
		return nil, nil, err
	}
	log.Info("udp link open",
		zap.String("peer", peer.String()),
		zap.Int("button_port", btnSock.LocalPort()),
	)
	return sink, node.NewDatagramButtonSource(btnSock), nil
}

// demoParams walks through the parametric animation set, ten seconds
// per entry.
func demoParams() node.ParamFunc {
	table := []protocol.ParamUpdate{
		{Anim: protocol.AnimSolid, P1: 0, P2: 1, P3: 1},
		{Anim: protocol.AnimRainbow, P1: 0, P2: 2, P3: 1},
		{Anim: protocol.AnimGradient, P1: 0, P2: 240, P3: 1},
		{Anim: protocol.AnimWave, P1: 0, P2: 0.01, P3: 0.2},
		{Anim: protocol.AnimBreathing, P1: 120, P2: 0.5, P3: 0.1},
	}
	start := time.Now()
	return func() (protocol.AnimationType, float32, float32, float32) {
		i := int(time.Since(start)/(10*time.Second)) % len(table)
		u := table[i]
		return u.Anim, u.P1, u.P2, u.P3
	}
}
