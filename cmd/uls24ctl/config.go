//go:build linux

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/capture"
	"github.com/Adam-cm/ULS24-Device-Interface/internal/protocol"
)

type DeviceConfig struct {
	VendorID    string `toml:"vendor_id"`
	ProductID   string `toml:"product_id"`
	Transport   string `toml:"transport"`
	Protocol    string `toml:"protocol"`
	SampleOrder string `toml:"sample_order"`
}

type CaptureConfig struct {
	ReadTimeoutMS     int `toml:"read_timeout_ms"`
	ReplyTimeoutMS    int `toml:"reply_timeout_ms"`
	MaxAttempts       int `toml:"max_attempts"`
	Channel           int `toml:"channel"`
	IntegrationTimeMS int `toml:"integration_time_ms"`
	GainMode          int `toml:"gain_mode"`
}

type MQTTConfig struct {
	Enabled  bool   `toml:"enabled"`
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
	Topic    string `toml:"topic"`
}

type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type Config struct {
	Device  DeviceConfig  `toml:"device"`
	Capture CaptureConfig `toml:"capture"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	HTTP    HTTPConfig    `toml:"http"`
}

func DefaultConfigSettings() Config {
	return Config{
		Device: DeviceConfig{
			VendorID:  "0483",
			ProductID: "5750",
			Transport: "hidraw",
			Protocol:  "framed",
		},
		Capture: CaptureConfig{
			ReadTimeoutMS:     5000,
			ReplyTimeoutMS:    2000,
			MaxAttempts:       20,
			Channel:           1,
			IntegrationTimeMS: 30,
			GainMode:          protocol.GainLow,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "uls24ctl",
			Topic:    "uls24/frames",
		},
		HTTP: HTTPConfig{
			Addr: ":9200",
		},
	}
}

// LoadConfig reads a TOML file, filling defaults for anything it omits.
// An empty path yields the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfigSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if _, err := parseHexID(cfg.Device.VendorID); err != nil {
		return fmt.Errorf("device config bad vendor_id %q: %w", cfg.Device.VendorID, err)
	}
	if _, err := parseHexID(cfg.Device.ProductID); err != nil {
		return fmt.Errorf("device config bad product_id %q: %w", cfg.Device.ProductID, err)
	}
	switch cfg.Device.Transport {
	case "hidraw", "usbfs":
	default:
		return fmt.Errorf("device config transport must be hidraw or usbfs, got %q", cfg.Device.Transport)
	}
	switch cfg.Device.Protocol {
	case "framed", "simple":
	default:
		return fmt.Errorf("device config protocol must be framed or simple, got %q", cfg.Device.Protocol)
	}
	switch cfg.Device.SampleOrder {
	case "", "big", "little":
	default:
		return fmt.Errorf("device config sample_order must be big or little, got %q", cfg.Device.SampleOrder)
	}
	if cfg.Capture.ReadTimeoutMS <= 0 || cfg.Capture.ReplyTimeoutMS <= 0 {
		return fmt.Errorf("capture config timeouts must be positive")
	}
	if cfg.Capture.MaxAttempts <= 0 {
		return fmt.Errorf("capture config max_attempts must be positive")
	}
	if cfg.Capture.Channel < protocol.MinChannel || cfg.Capture.Channel > protocol.MaxChannel {
		return fmt.Errorf("capture config channel %d out of range", cfg.Capture.Channel)
	}
	if cfg.Capture.IntegrationTimeMS < protocol.MinIntTime || cfg.Capture.IntegrationTimeMS > protocol.MaxIntTime {
		return fmt.Errorf("capture config integration_time_ms %d out of range", cfg.Capture.IntegrationTimeMS)
	}
	if cfg.Capture.GainMode != protocol.GainHigh && cfg.Capture.GainMode != protocol.GainLow {
		return fmt.Errorf("capture config gain_mode must be 0 or 1, got %d", cfg.Capture.GainMode)
	}
	if cfg.MQTT.Enabled && strings.TrimSpace(cfg.MQTT.Broker) == "" {
		return fmt.Errorf("mqtt config enabled without a broker")
	}
	if cfg.HTTP.Enabled && strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("http config enabled without an addr")
	}
	return nil
}

func (c Config) captureConfig() capture.Config {
	return capture.Config{
		ReadTimeout:  time.Duration(c.Capture.ReadTimeoutMS) * time.Millisecond,
		ReplyTimeout: time.Duration(c.Capture.ReplyTimeoutMS) * time.Millisecond,
		MaxAttempts:  c.Capture.MaxAttempts,
	}
}

func parseHexID(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
