//go:build !tinygo

// Config loading and logger construction are host-only: viper and
// lumberjack have no business on a baremetal target, and the firmware
// entry points wire their collaborators directly.

package node

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"ledlink/protocol"
)

// SerialConfig describes the serial side of the link.
type SerialConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// NetworkConfig describes the datagram side of the link, including the
// credentials handed over in the bootstrap packet.
type NetworkConfig struct {
	SSID             string        `mapstructure:"ssid"`
	Password         string        `mapstructure:"password"`
	PeerIP           string        `mapstructure:"peerIP"`
	LedPort          int           `mapstructure:"ledPort"`
	ButtonPort       int           `mapstructure:"buttonPort"`
	BootstrapTimeout time.Duration `mapstructure:"bootstrapTimeout"`
}

// CadenceConfig sets the tick loop intervals.
type CadenceConfig struct {
	Frame  time.Duration `mapstructure:"frame"`
	Button time.Duration `mapstructure:"button"`
	Stats  time.Duration `mapstructure:"stats"`
}

// FileLogConfig enables rotating file output when Filename is set.
type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   FileLogConfig `mapstructure:"file"`
}

// Config is the top level configuration shared by both binaries.
// Transport selects the pipe (serial or udp); Mode selects what the
// LED channel carries (raw frames or parameter updates).
type Config struct {
	Mode      string        `mapstructure:"mode"`
	Transport string        `mapstructure:"transport"`
	Serial    SerialConfig  `mapstructure:"serial"`
	Network   NetworkConfig `mapstructure:"network"`
	Cadence   CadenceConfig `mapstructure:"cadence"`
	Log       LogConfig     `mapstructure:"log"`
}

// LoadConfig reads configuration from a file and the environment. An
// empty path falls back to ledlink.yaml in the working directory.
// Environment variables use the LEDLINK_ prefix with dots replaced by
// underscores, e.g. LEDLINK_SERIAL_DEVICE.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("ledlink")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("LEDLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and environment carry.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "raw")
	v.SetDefault("transport", "serial")

	v.SetDefault("serial.device", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 921600)

	v.SetDefault("network.peerIP", "192.168.4.1")
	v.SetDefault("network.ledPort", protocol.DefaultLedPort)
	v.SetDefault("network.buttonPort", protocol.DefaultButtonPort)
	v.SetDefault("network.bootstrapTimeout", "30s")

	v.SetDefault("cadence.frame", DefaultFrameInterval)
	v.SetDefault("cadence.button", DefaultButtonInterval)
	v.SetDefault("cadence.stats", DefaultStatsInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Mode returns the parsed link mode.
func (c *Config) LinkMode() (Mode, error) {
	m, ok := ParseMode(c.Mode)
	if !ok {
		return ModeRaw, fmt.Errorf("unknown mode %q", c.Mode)
	}
	return m, nil
}

// UseUDP reports whether the datagram transport is selected.
func (c *Config) UseUDP() (bool, error) {
	switch c.Transport {
	case "udp":
		return true, nil
	case "serial", "":
		return false, nil
	default:
		return false, fmt.Errorf("unknown transport %q", c.Transport)
	}
}

// PeerIPBytes parses the configured peer address as a dotted quad.
func (c *Config) PeerIPBytes() ([4]byte, error) {
	var out [4]byte
	ip := net.ParseIP(c.Network.PeerIP)
	if ip == nil {
		return out, fmt.Errorf("invalid peer IP %q", c.Network.PeerIP)
	}
	v4 := ip.To4()
	if v4 == nil {
		return out, fmt.Errorf("peer IP %q is not IPv4", c.Network.PeerIP)
	}
	copy(out[:], v4)
	return out, nil
}

// BootstrapPacket builds the startup handover packet from the network
// section.
func (c *Config) BootstrapPacket() (*protocol.Bootstrap, error) {
	ip, err := c.PeerIPBytes()
	if err != nil {
		return nil, err
	}
	return &protocol.Bootstrap{
		SSID:       c.Network.SSID,
		Password:   c.Network.Password,
		PeerIP:     ip,
		LedPort:    uint16(c.Network.LedPort),
		ButtonPort: uint16(c.Network.ButtonPort),
	}, nil
}

// NewLogger builds a zap logger from the log section. Console output
// always; rotating file output when a filename is configured.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	ws := zapcore.AddSync(os.Stdout)
	if cfg.File.Filename != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File.Filename,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.AddSync(lj))
	}

	core := zapcore.NewCore(encoder, ws, level)
	return zap.New(core, zap.AddCaller()), nil
}
