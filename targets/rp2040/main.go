//go:build rp2040

// Consumer firmware for the RP2040. Validates LED frames arriving on
// UART0, drives the SK6812 strip, and reports button states back on
// the same line.
//
// Build with:
//
//	tinygo build -target=pico -o ledlink-cpu.uf2 ./targets/rp2040/
package main

import (
	"machine"
	"time"

	"ledlink/driver"
	"ledlink/node"
	"ledlink/protocol"
)

const linkBaud = 921600

var (
	stripPin   = machine.GP2
	buttonPins = [4]machine.Pin{machine.GP10, machine.GP11, machine.GP12, machine.GP13}
)

func main() {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: linkBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	strip := driver.NewSK6812Strip(stripPin, protocol.TotalLEDs)
	buttons := driver.NewGPIOButtons(buttonPins)

	source := node.NewSerialLedSource(node.ModeRaw)
	consumer := node.NewConsumer(node.ConsumerOptions{
		Mode:       node.ModeRaw,
		Source:     source,
		Strip:      strip,
		Buttons:    buttons,
		ButtonSink: node.NewSerialButtonSink(uart),
	})

	buf := make([]byte, 256)
	for {
		// Single-core loop: move whatever the UART buffered into the
		// deframer, then run one consumer tick.
		for uart.Buffered() > 0 {
			n, err := uart.Read(buf)
			if n <= 0 || err != nil {
				break
			}
			source.Write(buf[:n]) //nolint:errcheck
		}
		consumer.Tick(time.Now()) //nolint:errcheck
	}
}
