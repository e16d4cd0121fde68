package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rotary-dial.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Dial.PulseDebounceMs != 20 {
		t.Errorf("pulse debounce: got %d, want 20", cfg.Dial.PulseDebounceMs)
	}
	if cfg.Dial.ShuntDebounceMs != 50 {
		t.Errorf("shunt debounce: got %d, want 50", cfg.Dial.ShuntDebounceMs)
	}
	if cfg.Dial.SafetyTimeoutMs != 3000 {
		t.Errorf("safety timeout: got %d, want 3000", cfg.Dial.SafetyTimeoutMs)
	}
	if cfg.Dial.PinPulse != 15 || cfg.Dial.PinShunt != 14 {
		t.Errorf("pins: got %d/%d, want 15/14", cfg.Dial.PinPulse, cfg.Dial.PinShunt)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dial:
  tick_ms: 10
  pin_pulse: 5
  pin_shunt: 6
mqtt:
  broker: tcp://10.0.0.1:1883
serial:
  port: /dev/ttyAMA0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Dial.TickMs != 10 {
		t.Errorf("tick: got %d, want 10", cfg.Dial.TickMs)
	}
	if cfg.Dial.PinPulse != 5 || cfg.Dial.PinShunt != 6 {
		t.Errorf("pins: got %d/%d, want 5/6", cfg.Dial.PinPulse, cfg.Dial.PinShunt)
	}
	// Values absent from the file keep their defaults.
	if cfg.Dial.PulseDebounceMs != 20 {
		t.Errorf("pulse debounce: got %d, want default 20", cfg.Dial.PulseDebounceMs)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("baud: got %d, want default 115200", cfg.Serial.Baud)
	}
	if cfg.MQTT.Broker != "tcp://10.0.0.1:1883" {
		t.Errorf("broker: got %q", cfg.MQTT.Broker)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "dial: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero tick", func(c *Config) { c.Dial.TickMs = 0 }, "tick_ms"},
		{"tick too slow", func(c *Config) { c.Dial.TickMs = 51 }, "tick_ms"},
		{"zero pulse debounce", func(c *Config) { c.Dial.PulseDebounceMs = 0 }, "pulse_debounce_ms"},
		{"zero shunt debounce", func(c *Config) { c.Dial.ShuntDebounceMs = 0 }, "shunt_debounce_ms"},
		{"safety below debounce", func(c *Config) { c.Dial.SafetyTimeoutMs = 30 }, "safety_timeout_ms"},
		{"negative pin", func(c *Config) { c.Dial.PinPulse = -1 }, "pins"},
		{"same pins", func(c *Config) { c.Dial.PinShunt = c.Dial.PinPulse }, "differ"},
		{"negative heartbeat", func(c *Config) { c.MQTT.HeartbeatMs = -1 }, "heartbeat_ms"},
		{"serial without baud", func(c *Config) { c.Serial.Port = "/dev/ttyUSB0"; c.Serial.Baud = 0 }, "baud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
