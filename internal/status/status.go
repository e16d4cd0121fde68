// Package status provides a thread-safe status tracker for the rotary-dial
// daemon. It is updated by the main loop from drained dial events and read
// by HTTP handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs          int64
	PulseDebounceMs int64
	ShuntDebounceMs int64
	SafetyTimeoutMs int64
	HeartbeatMs     int64
	PinPulse        int
	PinShunt        int
	Broker          string
	SerialPort      string
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Phase         dial.Phase
	LastDigit     int // -1 until a digit has been decoded
	Counts        dial.Counts
	RingDrops     uint64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Phase:     dial.PhaseIdle,
			LastDigit: -1,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Apply folds one drained dial event into the tracked state.
// Called from the main loop in delivery order.
func (t *Tracker) Apply(e dial.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Type {
	case dial.EventStarted:
		t.snap.Phase = dial.PhaseDialing
		t.snap.Counts.Started++
	case dial.EventEnded:
		t.snap.Phase = dial.PhaseIdle
		t.snap.Counts.Ended++
	case dial.EventPulse:
		t.snap.Counts.Pulses++
	case dial.EventDigit:
		t.snap.LastDigit = e.Digit
		t.snap.Counts.Digits++
	case dial.EventSafetyTimeout:
		t.snap.Phase = dial.PhaseIdle
		t.snap.Counts.Timeouts++
		if e.Pulses >= 1 && e.Pulses <= dial.MaxPulses {
			t.snap.LastDigit = dial.DigitForPulses(e.Pulses)
		}
	}
}

// SetRingDrops records the cumulative number of events lost to ring overflow.
func (t *Tracker) SetRingDrops(drops uint64) {
	t.mu.Lock()
	t.snap.RingDrops = drops
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
