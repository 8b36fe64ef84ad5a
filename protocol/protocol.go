// Package protocol implements the CPU/GPU LED link wire protocol
package protocol

// Version represents the ledlink protocol version
const Version = "0.1.0"

// Strip geometry. The 196-byte pixel payload is the concatenation of
// four physical sections, 4 bytes (RGBW) per LED.
const (
	BytesPerLED  = 4
	LeftFinLEDs  = 13
	RightFinLEDs = 13
	TongueLEDs   = 9
	ScaleLEDs    = 14
	TotalLEDs    = LeftFinLEDs + RightFinLEDs + TongueLEDs + ScaleLEDs
	PixelBytes   = TotalLEDs * BytesPerLED // 196
)

// Wire constants
const (
	SyncByte1 = 0xAA // first sync byte on the serial channel
	SyncByte2 = 0x55

	BootstrapSync1 = 0xCC
	BootstrapSync2 = 0xDD

	LedMagic    uint16 = 0xAA55
	ButtonMagic uint16 = 0x5AA5
)

// Bootstrap field widths
const (
	SSIDLen     = 32
	PasswordLen = 64
)

// Packet sizes, exact field widths
const (
	LedFrameSize    = 2 + PixelBytes + 1 + 1 // 200
	LedDatagramSize = 2 + 1 + 1 + PixelBytes + 1
	ButtonFrameSize = 7
	ParamUpdateSize = 2 + 1 + 1 + 12 + 1
	BootstrapSize   = 2 + SSIDLen + PasswordLen + 4 + 2 + 2 + 1 // 107
)

// Frame counter moduli. LED frames cycle 1-60 and parameter updates
// cycle 1-255. The two values are deliberately distinct: skip-counting
// diagnostics depend on the exact modulus per channel.
const (
	LedFrameModulus    = 60
	ParamUpdateModulus = 255
)

// SyncSearchBudget bounds how many garbage bytes one Poll call may
// discard while hunting for a sync pair.
const SyncSearchBudget = 400

// Default UDP ports for datagram mode
const (
	DefaultLedPort    = 8888
	DefaultButtonPort = 8889
)
