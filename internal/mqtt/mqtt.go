// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// TopicEvents is the MQTT topic for decoded dial events.
const TopicEvents = "telephony/rotary/dial/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "telephony/rotary/dial/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a dial event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event dial.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message envelope for dial events.
type Payload struct {
	Dial DialPayload `json:"dial"`
}

// DialPayload contains the dial event details.
type DialPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Digit     *int   `json:"digit,omitempty"`
	Pulses    int    `json:"pulses,omitempty"`
}

// FormatPayload creates the JSON payload for a dial event. The digit field
// is present only for DIGIT events (a pointer, so digit 0 survives
// omitempty).
func FormatPayload(event dial.Event) ([]byte, error) {
	p := Payload{
		Dial: DialPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Pulses:    event.Pulses,
		},
	}
	if event.Type == dial.EventDigit {
		digit := event.Digit
		p.Dial.Digit = &digit
	}
	return json.Marshal(p)
}

// SystemPayload is the MQTT message envelope for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
