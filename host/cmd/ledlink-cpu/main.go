// ledlink-cpu is the consumer side of the LED link. It validates
// inbound frames or parameter updates, drives the strip, and reports
// button states back to the producer.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ledlink/driver"
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
		log.Fatal("consumer failed", zap.Error(err))
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

	var source node.LedSource
	var btnSink node.ButtonSink

	if useUDP {
		source, btnSink, err = udpTransport(cfg, log)
	} else {
		source, btnSink, err = serialTransport(cfg, mode, log)
	}
	if err != nil {
		return err
	}

	// Host builds render into memory; the tinygo target swaps in the
	// SK6812 strip and GPIO buttons.
	strip := driver.NewMemoryStrip(protocol.TotalLEDs)
	buttons := &driver.StaticButtons{}

	c := node.NewConsumer(node.ConsumerOptions{
		Mode:           mode,
		Source:         source,
		Strip:          strip,
		Buttons:        buttons,
		ButtonSink:     btnSink,
		FrameInterval:  cfg.Cadence.Frame,
		ButtonInterval: cfg.Cadence.Button,
		StatsInterval:  cfg.Cadence.Stats,
		Log:            log,
	})

	log.Info("consumer running",
		zap.String("mode", cfg.Mode),
		zap.String("transport", cfg.Transport),
		zap.Int("leds", strip.Len()),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if err := c.Tick(now); err != nil {
				log.Warn("strip update failed", zap.Error(err))
			}
		case s := <-sig:
			log.Info("shutting down", zap.String("signal", s.String()))
			return nil
		}
	}
}

func serialTransport(cfg *node.Config, mode node.Mode, log *zap.Logger) (node.LedSource, node.ButtonSink, error) {
	port, err := serial.Open(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: 100,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("serial link open", zap.String("device", cfg.Serial.Device), zap.Int("baud", cfg.Serial.Baud))

	source := node.NewSerialLedSource(mode)
	go node.Pump(port, source)
	return source, node.NewSerialButtonSink(port), nil
}

// udpTransport picks up endpoint addresses from the bootstrap packet
// on the serial line when a device is configured, otherwise straight
// from the config file.
func udpTransport(cfg *node.Config, log *zap.Logger) (node.LedSource, node.ButtonSink, error) {
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
		boot, err = link.ReceiveBootstrap(port, cfg.Network.BootstrapTimeout)
		port.Close()
		if err != nil {
			// No valid bootstrap means no usable link. Fatal per the
			// handshake contract.
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		log.Info("bootstrap received", zap.String("ssid", boot.SSID))
	}

	ledSock, err := link.ListenUDP(int(boot.LedPort))
	if err != nil {
		return nil, nil, err
	}

	btnSock, err := link.ListenUDP(0)
	if err != nil {
		ledSock.Close()
		return nil, nil, err
	}
	peer := link.PeerAddr(boot.PeerIP, boot.ButtonPort)
	log.Info("udp link open",
		zap.Int("led_port", ledSock.LocalPort()),
		zap.String("button_peer", peer.String()),
	)
	return node.NewDatagramLedSource(ledSock), node.NewDatagramButtonSink(btnSock, peer), nil
}
