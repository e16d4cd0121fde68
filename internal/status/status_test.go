package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

var start = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		TickMs:          25,
		PulseDebounceMs: 20,
		ShuntDebounceMs: 50,
		SafetyTimeoutMs: 3000,
		HeartbeatMs:     900000,
		PinPulse:        15,
		PinShunt:        14,
		Broker:          "tcp://192.168.1.200:1883",
		HTTPAddr:        ":80",
	}
}

func TestNewTrackerDefaults(t *testing.T) {
	tr := NewTracker(start, testConfig())
	snap := tr.Snapshot()

	if snap.Phase != dial.PhaseIdle {
		t.Errorf("phase: got %s, want IDLE", snap.Phase)
	}
	if snap.LastDigit != -1 {
		t.Errorf("last digit: got %d, want -1", snap.LastDigit)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("broker: got %q", snap.Config.Broker)
	}
}

func TestApplyFullCycle(t *testing.T) {
	tr := NewTracker(start, testConfig())

	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventStarted})
	if tr.Snapshot().Phase != dial.PhaseDialing {
		t.Error("expected DIALING after Started")
	}

	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventPulse, Pulses: 1})
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventPulse, Pulses: 2})
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventEnded})
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventDigit, Digit: 2, Pulses: 2})

	snap := tr.Snapshot()
	if snap.Phase != dial.PhaseIdle {
		t.Errorf("phase: got %s, want IDLE", snap.Phase)
	}
	if snap.LastDigit != 2 {
		t.Errorf("last digit: got %d, want 2", snap.LastDigit)
	}
	if snap.Counts.Started != 1 || snap.Counts.Ended != 1 || snap.Counts.Pulses != 2 || snap.Counts.Digits != 1 {
		t.Errorf("counts: got %+v", snap.Counts)
	}
}

func TestApplySafetyTimeoutRecordsImplicitDigit(t *testing.T) {
	tr := NewTracker(start, testConfig())

	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventStarted})
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventSafetyTimeout, Pulses: 10})

	snap := tr.Snapshot()
	if snap.Phase != dial.PhaseIdle {
		t.Errorf("phase: got %s, want IDLE", snap.Phase)
	}
	if snap.Counts.Timeouts != 1 {
		t.Errorf("timeouts: got %d, want 1", snap.Counts.Timeouts)
	}
	if snap.LastDigit != 0 {
		t.Errorf("last digit: got %d, want 0 (ten pulses)", snap.LastDigit)
	}
}

func TestApplySafetyTimeoutOvercountKeepsLastDigit(t *testing.T) {
	tr := NewTracker(start, testConfig())
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventDigit, Digit: 4, Pulses: 4})
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventSafetyTimeout, Pulses: 12})

	if got := tr.Snapshot().LastDigit; got != 4 {
		t.Errorf("last digit: got %d, want 4 (overcount never reports a digit)", got)
	}
}

func TestSetters(t *testing.T) {
	tr := NewTracker(start, testConfig())
	tr.SetMQTTConnected(true)
	tr.SetRingDrops(7)

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.RingDrops != 7 {
		t.Errorf("ring drops: got %d, want 7", snap.RingDrops)
	}
}

func TestFormatJSON(t *testing.T) {
	tr := NewTracker(start, testConfig())
	tr.Apply(dial.Event{Timestamp: start, Type: dial.EventDigit, Digit: 0, Pulses: 10})
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if sj.Status.Phase != "IDLE" {
		t.Errorf("phase: got %q, want IDLE", sj.Status.Phase)
	}
	if sj.Status.LastDigit == nil || *sj.Status.LastDigit != 0 {
		t.Errorf("last digit: got %v, want 0", sj.Status.LastDigit)
	}
	if sj.Status.Counts.Digits != 1 {
		t.Errorf("digits count: got %d, want 1", sj.Status.Counts.Digits)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected mqtt.connected=true")
	}
	if sj.Status.Config.PinPulse != 15 || sj.Status.Config.PinShunt != 14 {
		t.Errorf("pins: got %d/%d, want 15/14", sj.Status.Config.PinPulse, sj.Status.Config.PinShunt)
	}
	if sj.Status.Event != "" {
		t.Errorf("web JSON should not carry an event, got %q", sj.Status.Event)
	}
}

func TestFormatJSONOmitsLastDigitBeforeFirstDial(t *testing.T) {
	tr := NewTracker(start, testConfig())

	var raw map[string]map[string]any
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := raw["status"]["last_digit"]; present {
		t.Error("last_digit should be omitted before the first decoded digit")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(start, testConfig())

	var sj StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", sj.Status.Reason)
	}
}
