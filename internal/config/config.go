// Package config loads the optional YAML configuration file. Values not set
// in the file keep their defaults; command-line flags override both.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Schop/rotary-dial-test/internal/dial"
	"github.com/Schop/rotary-dial-test/internal/gpio"
)

type Config struct {
	Dial   DialConfig   `yaml:"dial"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Serial SerialConfig `yaml:"serial"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// DialConfig holds the decoder timing and pin assignments.
type DialConfig struct {
	TickMs          int `yaml:"tick_ms"`
	PulseDebounceMs int `yaml:"pulse_debounce_ms"`
	ShuntDebounceMs int `yaml:"shunt_debounce_ms"`
	SafetyTimeoutMs int `yaml:"safety_timeout_ms"`
	PinPulse        int `yaml:"pin_pulse"`
	PinShunt        int `yaml:"pin_shunt"`
}

// MQTTConfig holds the broker settings. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	HeartbeatMs int    `yaml:"heartbeat_ms"`
}

// SerialConfig holds the host serial stream settings. An empty port disables
// the serial sink.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// HTTPConfig holds the status server settings. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration, matching the reference
// hardware timings.
func Default() Config {
	return Config{
		Dial: DialConfig{
			TickMs:          25,
			PulseDebounceMs: int(dial.DefaultPulseDebounce.Milliseconds()),
			ShuntDebounceMs: int(dial.DefaultShuntDebounce.Milliseconds()),
			SafetyTimeoutMs: int(dial.DefaultSafetyTimeout.Milliseconds()),
			PinPulse:        gpio.DefaultPinPulse,
			PinShunt:        gpio.DefaultPinShunt,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://192.168.1.200:1883",
			HeartbeatMs: int((15 * 60 * 1000)),
		},
		Serial: SerialConfig{
			Baud: 115200,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the decoder cannot work with.
func (c *Config) Validate() error {
	d := c.Dial
	if d.TickMs <= 0 || d.TickMs > int(dial.MaxTickPeriod.Milliseconds()) {
		return fmt.Errorf("dial.tick_ms must be in 1..%d, got %d", dial.MaxTickPeriod.Milliseconds(), d.TickMs)
	}
	if d.PulseDebounceMs <= 0 {
		return fmt.Errorf("dial.pulse_debounce_ms must be positive, got %d", d.PulseDebounceMs)
	}
	if d.ShuntDebounceMs <= 0 {
		return fmt.Errorf("dial.shunt_debounce_ms must be positive, got %d", d.ShuntDebounceMs)
	}
	if d.SafetyTimeoutMs <= d.PulseDebounceMs || d.SafetyTimeoutMs <= d.ShuntDebounceMs {
		return fmt.Errorf("dial.safety_timeout_ms must exceed both debounce windows, got %d", d.SafetyTimeoutMs)
	}
	if d.PinPulse < 0 || d.PinShunt < 0 {
		return fmt.Errorf("pins must be non-negative, got pulse=%d shunt=%d", d.PinPulse, d.PinShunt)
	}
	if d.PinPulse == d.PinShunt {
		return fmt.Errorf("pulse and shunt pins must differ, both are %d", d.PinPulse)
	}
	if c.MQTT.HeartbeatMs < 0 {
		return fmt.Errorf("mqtt.heartbeat_ms must not be negative, got %d", c.MQTT.HeartbeatMs)
	}
	if c.Serial.Port != "" && c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive when serial.port is set, got %d", c.Serial.Baud)
	}
	return nil
}
