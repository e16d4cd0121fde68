package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Phase         string     `json:"phase"`
	LastDigit     *int       `json:"last_digit,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	RingDrops     uint64     `json:"ring_drops"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Started  int `json:"started"`
	Ended    int `json:"ended"`
	Pulses   int `json:"pulses"`
	Digits   int `json:"digits"`
	Timeouts int `json:"timeouts"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs          int64  `json:"tick_ms"`
	PulseDebounceMs int64  `json:"pulse_debounce_ms"`
	ShuntDebounceMs int64  `json:"shunt_debounce_ms"`
	SafetyTimeoutMs int64  `json:"safety_timeout_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	PinPulse        int    `json:"pin_pulse"`
	PinShunt        int    `json:"pin_shunt"`
	Broker          string `json:"broker,omitempty"`
	SerialPort      string `json:"serial_port,omitempty"`
	HTTPAddr        string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Phase:         string(snap.Phase),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Started:  snap.Counts.Started,
			Ended:    snap.Counts.Ended,
			Pulses:   snap.Counts.Pulses,
			Digits:   snap.Counts.Digits,
			Timeouts: snap.Counts.Timeouts,
		},
		RingDrops: snap.RingDrops,
		Config: ConfigJSON{
			TickMs:          snap.Config.TickMs,
			PulseDebounceMs: snap.Config.PulseDebounceMs,
			ShuntDebounceMs: snap.Config.ShuntDebounceMs,
			SafetyTimeoutMs: snap.Config.SafetyTimeoutMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			PinPulse:        snap.Config.PinPulse,
			PinShunt:        snap.Config.PinShunt,
			Broker:          snap.Config.Broker,
			SerialPort:      snap.Config.SerialPort,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}
	if snap.LastDigit >= 0 {
		digit := snap.LastDigit
		inner.LastDigit = &digit
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
